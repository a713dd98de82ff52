package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyID string             `bson:"propertyID" json:"propertyID"`
	FromID     string             `bson:"fromID" json:"fromID"`
	ToID       string             `bson:"toID" json:"toID"`
	Body       string             `bson:"body" json:"body"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
