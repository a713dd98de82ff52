package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/gorilla/mux"
	"github.com/montanaflynn/stats"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreateReview(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		if _, err := primitive.ObjectIDFromHex(propertyID); err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var review models.Review
		if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
			log.Printf("Invalid review body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if review.Rating < 0 || review.Rating > 5 {
			http.Error(w, "Rating must be between 0 and 5", http.StatusBadRequest)
			return
		}

		review.ID = primitive.NewObjectID()
		review.PropertyID = propertyID
		review.UserID = userID
		review.CreatedAt = time.Now()

		if _, err := config.ReviewCollection.InsertOne(r.Context(), review); err != nil {
			log.Printf("Review insert failed: %v", err)
			http.Error(w, "Failed to create review", http.StatusInternalServerError)
			return
		}

		if err := recomputeRatingStats(r.Context(), propertyID); err != nil {
			log.Printf("Failed to recompute stats for %s: %v", propertyID, err)
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Review created",
			Data:    review,
		})
	}
}

func GetReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.ReviewCollection.Find(r.Context(), bson.M{"propertyID": propertyID}, opts)
		if err != nil {
			log.Printf("Error fetching reviews for %s: %v", propertyID, err)
			http.Error(w, "Failed to fetch reviews", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var reviews []models.Review
		if err := cursor.All(r.Context(), &reviews); err != nil {
			log.Printf("Error decoding reviews for %s: %v", propertyID, err)
			http.Error(w, "Failed to decode reviews", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched reviews",
			Data:    reviews,
		})
	}
}

// recomputeRatingStats rebuilds the aggregated rating from the full review
// set rather than incrementally, so redundant runs converge on the same row.
func recomputeRatingStats(ctx context.Context, propertyID string) error {
	cursor, err := config.ReviewCollection.Find(ctx, bson.M{"propertyID": propertyID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var ratings []float64
	for cursor.Next(ctx) {
		var rv models.Review
		if err := cursor.Decode(&rv); err != nil {
			log.Printf("Error decoding review during recompute: %v", err)
			continue
		}
		ratings = append(ratings, rv.Rating)
	}
	if err := cursor.Err(); err != nil {
		return err
	}

	var avg float64
	if len(ratings) > 0 {
		mean, err := stats.Mean(ratings)
		if err != nil {
			return err
		}
		avg, err = stats.Round(mean, 2)
		if err != nil {
			return err
		}
	}

	update := bson.M{
		"$set":         bson.M{"avgRating": avg, "reviewCount": len(ratings)},
		"$setOnInsert": bson.M{"favoriteCount": 0},
	}
	opts := options.Update().SetUpsert(true)
	_, err = config.StatsCollection.UpdateOne(ctx, bson.M{"propertyId": propertyID}, update, opts)
	return err
}
