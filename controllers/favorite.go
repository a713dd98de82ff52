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
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func AddFavorite(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var fav models.Favorite
		if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
			log.Println("Invalid request data ", err)
			http.Error(w, "Invalid request data", http.StatusBadRequest)
			return
		}

		if fav.PropertyID == "" {
			http.Error(w, "propertyID is required", http.StatusBadRequest)
			return
		}

		fav.UserID = userID
		fav.ID = primitive.NewObjectID()
		fav.CreatedAt = time.Now()

		var existing models.Favorite
		err := config.FavoriteCollection.FindOne(r.Context(), bson.M{"userID": userID, "propertyID": fav.PropertyID}).Decode(&existing)
		if err == nil {
			http.Error(w, "Property is already in favorites", http.StatusConflict)
			return
		}
		if err != mongo.ErrNoDocuments {
			log.Println("Failed to check favorites ", err)
			http.Error(w, "Failed to check favorites", http.StatusInternalServerError)
			return
		}

		if _, err := config.FavoriteCollection.InsertOne(r.Context(), fav); err != nil {
			log.Println("Failed to add property to favorites ", err)
			http.Error(w, "Failed to add property to favorites", http.StatusInternalServerError)
			return
		}

		if err := bumpFavoriteCount(r.Context(), fav.PropertyID, 1); err != nil {
			log.Printf("Failed to bump favorite count for %s: %v", fav.PropertyID, err)
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Property added to favorites",
			Data:    fav,
		})
	}
}

func RemoveFavorite(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["propertyID"]

		deleteResult, err := config.FavoriteCollection.DeleteOne(r.Context(), bson.M{
			"userID":     userID,
			"propertyID": propertyID,
		})
		if err != nil {
			log.Println("Failed to remove property from favorites ", err)
			http.Error(w, "Failed to remove property from favorites", http.StatusInternalServerError)
			return
		}

		if deleteResult.DeletedCount == 0 {
			http.Error(w, "Favorite not found", http.StatusNotFound)
			return
		}

		if err := bumpFavoriteCount(r.Context(), propertyID, -1); err != nil {
			log.Printf("Failed to drop favorite count for %s: %v", propertyID, err)
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Property removed from favorites",
		})
	}
}

// ToggleFavorite flips membership in one call and returns the authoritative
// post-write state, so an optimistic client reconciles against the response
// instead of deciding locally whether to roll back.
func ToggleFavorite(redisClient *redis.Client) http.HandlerFunc {
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

		filter := bson.M{"userID": userID, "propertyID": propertyID}
		result := models.ToggleResult{PropertyID: propertyID}

		var existing models.Favorite
		err := config.FavoriteCollection.FindOne(r.Context(), filter).Decode(&existing)
		switch {
		case err == nil:
			if _, err := config.FavoriteCollection.DeleteOne(r.Context(), filter); err != nil {
				log.Printf("Favorite toggle delete failed for %s/%s: %v", userID, propertyID, err)
				http.Error(w, "Failed to update favorites", http.StatusInternalServerError)
				return
			}
			if err := bumpFavoriteCount(r.Context(), propertyID, -1); err != nil {
				log.Printf("Failed to drop favorite count for %s: %v", propertyID, err)
			}
			result.Favorited = false

		case err == mongo.ErrNoDocuments:
			fav := models.Favorite{
				ID:         primitive.NewObjectID(),
				UserID:     userID,
				PropertyID: propertyID,
				CreatedAt:  time.Now(),
			}
			if _, err := config.FavoriteCollection.InsertOne(r.Context(), fav); err != nil {
				log.Printf("Favorite toggle insert failed for %s/%s: %v", userID, propertyID, err)
				http.Error(w, "Failed to update favorites", http.StatusInternalServerError)
				return
			}
			if err := bumpFavoriteCount(r.Context(), propertyID, 1); err != nil {
				log.Printf("Failed to bump favorite count for %s: %v", propertyID, err)
			}
			result.Favorited = true

		default:
			log.Printf("Favorite lookup failed for %s/%s: %v", userID, propertyID, err)
			http.Error(w, "Failed to update favorites", http.StatusInternalServerError)
			return
		}

		stats, err := loadStats(r.Context(), []string{propertyID})
		if err != nil {
			log.Printf("Failed to load stats after toggle for %s: %v", propertyID, err)
		}
		result.FavoriteCount = stats[propertyID].FavoriteCount

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Favorite toggled",
			Data:    result,
		})
	}
}

func GetFavorites() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		favorites, err := loadFavoriteSet(r.Context(), userID)
		if err != nil {
			log.Println("Failed to fetch favorites ", err)
			http.Error(w, "Failed to fetch favorites", http.StatusInternalServerError)
			return
		}

		ids := make([]string, 0, len(favorites))
		for id := range favorites {
			ids = append(ids, id)
		}

		properties, err := getPropertiesByIDs(r.Context(), ids)
		if err != nil {
			log.Println("Failed to fetch favorite properties ", err)
			http.Error(w, "Failed to fetch favorite properties", http.StatusInternalServerError)
			return
		}

		stats, err := loadStats(r.Context(), ids)
		if err != nil {
			log.Printf("Failed to load stats for favorites of %s: %v", userID, err)
		}
		for i := range properties {
			properties[i].IsFavorite = true
			properties[i].Stats = stats[properties[i].PropID]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched favorite properties",
			Data:    properties,
		})
	}
}

// bumpFavoriteCount keeps the denormalized per-property favorite count in
// the stats row, creating the row on first favorite. The count never drops
// below zero.
func bumpFavoriteCount(ctx context.Context, propertyID string, delta int) error {
	filter := bson.M{"propertyId": propertyID}
	if delta < 0 {
		filter["favoriteCount"] = bson.M{"$gt": 0}
	}
	update := bson.M{
		"$inc":         bson.M{"favoriteCount": delta},
		"$setOnInsert": bson.M{"avgRating": 0.0, "reviewCount": 0},
	}
	opts := options.Update().SetUpsert(delta > 0)
	_, err := config.StatsCollection.UpdateOne(ctx, filter, update, opts)
	return err
}
