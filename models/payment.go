package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentCompleted = "completed"
	PaymentPending   = "pending"
	PaymentFailed    = "failed"
)

type Payment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference  string             `bson:"reference" json:"reference"`
	PropertyID string             `bson:"propertyID" json:"propertyID"`
	TenantID   string             `bson:"tenantID" json:"tenantID"`
	LandlordID string             `bson:"landlordID" json:"landlordID"`
	Amount     float64            `bson:"amount" json:"amount"`
	Month      string             `bson:"month" json:"month"`
	Status     string             `bson:"status" json:"status"`
	PaidAt     time.Time          `bson:"paidAt" json:"paidAt"`
}
