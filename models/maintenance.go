package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaintenanceOpen       = "open"
	MaintenanceInProgress = "in_progress"
	MaintenanceResolved   = "resolved"
)

type MaintenanceRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID  string             `bson:"propertyID" json:"propertyID"`
	TenantID    string             `bson:"tenantID" json:"tenantID"`
	LandlordID  string             `bson:"landlordID" json:"landlordID"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
