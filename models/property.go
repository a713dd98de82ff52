package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusAvailable = "available"
	StatusOccupied  = "occupied"
)

type Property struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropID    string             `bson:"id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Street    string             `bson:"street" json:"street"`
	City      string             `bson:"city" json:"city"`
	Zip       string             `bson:"zip" json:"zip"`
	Price     float64            `bson:"price" json:"price"`
	Bedrooms  int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms int                `bson:"bathrooms" json:"bathrooms"`
	AreaSqFt  float64            `bson:"areaSqFt" json:"areaSqFt"`
	Amenities []string           `bson:"amenities" json:"amenities"`
	Images    []string           `bson:"images" json:"images"`
	Status    string             `bson:"status" json:"status"`
	OwnerID   string             `bson:"ownerId" json:"ownerId"`
	Deleted   bool               `bson:"deleted" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`

	// Overlays joined per viewer at read time, never persisted.
	IsFavorite bool          `bson:"-" json:"isFavorite"`
	Stats      PropertyStats `bson:"-" json:"stats"`
}

// PropertyStats is the aggregated per-property record. A property with no
// reviews or favorites has no stats row; readers default to the zero value.
type PropertyStats struct {
	PropertyID    string  `bson:"propertyId" json:"propertyId"`
	AvgRating     float64 `bson:"avgRating" json:"avgRating"`
	ReviewCount   int     `bson:"reviewCount" json:"reviewCount"`
	FavoriteCount int     `bson:"favoriteCount" json:"favoriteCount"`
}
