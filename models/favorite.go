package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorite struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userID" json:"userID"`
	PropertyID string             `bson:"propertyID" json:"propertyID"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// ToggleResult is the authoritative state after a favorite toggle. Clients
// reconcile their optimistic mirror against it instead of guessing.
type ToggleResult struct {
	PropertyID    string `json:"propertyID"`
	Favorited     bool   `json:"favorited"`
	FavoriteCount int    `json:"favoriteCount"`
}
