package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/search"
	"github.com/gorilla/mux"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ContextKey string

const (
	UserIDKey   = ContextKey("userID")
	UserRoleKey = ContextKey("userRole")
	TokenKey    = ContextKey("token")
)

const listingCacheTTL = 10 * time.Minute

func CreateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}
		if role, _ := r.Context().Value(UserRoleKey).(string); role != models.RoleLandlord {
			http.Error(w, "Only landlords can create properties", http.StatusForbidden)
			return
		}

		var property models.Property
		if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
			log.Printf("Invalid request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		objectID := primitive.NewObjectID()
		property.ID = objectID
		property.PropID = objectID.Hex()
		property.OwnerID = userID
		property.Deleted = false
		property.CreatedAt = time.Now()
		if property.Status == "" {
			property.Status = models.StatusAvailable
		}

		if _, err := config.PropertyCollection.InsertOne(r.Context(), property); err != nil {
			log.Printf("Insert failed: %v", err)
			http.Error(w, "Failed to create property", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(property)
	}
}

// GetAllProperties serves the discovery listing. The full non-deleted set is
// fetched once per request, joined with stats and the viewer's favorites,
// then filtered and ordered in memory; the rendered response is cached per
// viewer+query in Redis.
func GetAllProperties(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context for GetAllProperties")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		query := r.URL.Query()
		cacheKey := listingCacheKey(userID, query)

		cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cachedData))
			return
		}
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", cacheKey, err)
		}

		properties, err := listProperties(r.Context(), query.Get("status"))
		if err != nil {
			log.Printf("Error fetching properties: %v", err)
			http.Error(w, "Error fetching properties", http.StatusInternalServerError)
			return
		}

		ids := make([]string, 0, len(properties))
		for _, p := range properties {
			ids = append(ids, p.PropID)
		}

		stats, err := loadStats(r.Context(), ids)
		if err != nil {
			log.Printf("Error fetching stats: %v", err)
			http.Error(w, "Error fetching property stats", http.StatusInternalServerError)
			return
		}

		favorites, err := loadFavoriteSet(r.Context(), userID)
		if err != nil {
			// Favorites are an overlay; the listing still renders without them.
			log.Printf("Error fetching favorites for user %s: %v", userID, err)
			favorites = map[string]bool{}
		}

		for i := range properties {
			properties[i].Stats = stats[properties[i].PropID]
			properties[i].IsFavorite = favorites[properties[i].PropID]
		}

		criteria := search.ParseCriteria(query)
		filtered := search.Filter(properties, stats, criteria)
		ordered := search.Order(filtered, stats, criteria.Sort)

		resultBytes, err := json.Marshal(ordered)
		if err != nil {
			log.Printf("Failed to serialize properties: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		if err := redisClient.Set(r.Context(), cacheKey, resultBytes, listingCacheTTL).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func GetPropertyByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserIDKey).(string)

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var property models.Property
		err = config.PropertyCollection.FindOne(r.Context(), bson.M{"_id": objID, "deleted": false}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching property %s: %v", propertyID, err)
			http.Error(w, "Error fetching property", http.StatusInternalServerError)
			return
		}

		stats, err := loadStats(r.Context(), []string{property.PropID})
		if err != nil {
			log.Printf("Error fetching stats for property %s: %v", propertyID, err)
		} else {
			property.Stats = stats[property.PropID]
		}

		if userID != "" {
			favorites, err := loadFavoriteSet(r.Context(), userID)
			if err == nil {
				property.IsFavorite = favorites[property.PropID]
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(property)
	}
}

func UpdateProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			log.Printf("Invalid update data: %v", err)
			http.Error(w, "Invalid update data", http.StatusBadRequest)
			return
		}

		// Identity, ownership and lifecycle fields are not client-writable.
		delete(updateData, "_id")
		delete(updateData, "id")
		delete(updateData, "ownerId")
		delete(updateData, "deleted")
		delete(updateData, "createdAt")

		filter := bson.M{"_id": objID, "ownerId": userID, "deleted": false}
		update := bson.M{"$set": updateData}

		res, err := config.PropertyCollection.UpdateOne(r.Context(), filter, update)
		if err != nil {
			log.Printf("Update failed for property %s: %v", propertyID, err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		if res.MatchedCount == 0 {
			log.Printf("No property found with ID %s and owner %s, or unauthorized to update.", propertyID, userID)
			http.Error(w, "No property found or unauthorized", http.StatusForbidden)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property updated successfully"})
	}
}

func UpdatePropertyStatus(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if body.Status != models.StatusAvailable && body.Status != models.StatusOccupied {
			http.Error(w, "Status must be available or occupied", http.StatusBadRequest)
			return
		}

		filter := bson.M{"_id": objID, "ownerId": userID, "deleted": false}
		res, err := config.PropertyCollection.UpdateOne(r.Context(), filter, bson.M{"$set": bson.M{"status": body.Status}})
		if err != nil {
			log.Printf("Status update failed for property %s: %v", propertyID, err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}
		if res.MatchedCount == 0 {
			http.Error(w, "No property found or unauthorized", http.StatusForbidden)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property status updated"})
	}
}

// DeleteProperty soft-deletes: the row keeps existing with the deleted flag
// set so references from payments, messages and reviews stay resolvable.
func DeleteProperty(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		propertyID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(propertyID)
		if err != nil {
			log.Printf("Invalid property ID %s: %v", propertyID, err)
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		filter := bson.M{"_id": objID, "ownerId": userID, "deleted": false}
		res, err := config.PropertyCollection.UpdateOne(r.Context(), filter, bson.M{"$set": bson.M{"deleted": true}})
		if err != nil {
			log.Printf("Delete failed for property %s: %v", propertyID, err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		if res.MatchedCount == 0 {
			log.Printf("No property found with ID %s and owner %s, or unauthorized to delete.", propertyID, userID)
			http.Error(w, "No property found or unauthorized", http.StatusForbidden)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Property deleted successfully"})
	}
}

// listProperties fetches the non-deleted records, optionally narrowed to one
// status.
func listProperties(ctx context.Context, status string) ([]models.Property, error) {
	filter := bson.M{"deleted": false}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := config.PropertyCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// loadStats returns the stats rows for the given property ids keyed by id.
// Properties without a row are simply absent; callers default to the zero
// value.
func loadStats(ctx context.Context, propertyIDs []string) (map[string]models.PropertyStats, error) {
	out := make(map[string]models.PropertyStats)
	if len(propertyIDs) == 0 {
		return out, nil
	}

	cursor, err := config.StatsCollection.Find(ctx, bson.M{"propertyId": bson.M{"$in": propertyIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var st models.PropertyStats
		if err := cursor.Decode(&st); err != nil {
			log.Printf("Error decoding stats row: %v", err)
			continue
		}
		out[st.PropertyID] = st
	}
	return out, cursor.Err()
}

func loadFavoriteSet(ctx context.Context, userID string) (map[string]bool, error) {
	cursor, err := config.FavoriteCollection.Find(ctx, bson.M{"userID": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]bool)
	for cursor.Next(ctx) {
		var fav models.Favorite
		if err := cursor.Decode(&fav); err != nil {
			log.Printf("Error decoding favorite: %v", err)
			continue
		}
		out[fav.PropertyID] = true
	}
	return out, cursor.Err()
}

func listingCacheKey(userID string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(userID)
	sb.WriteString(":")

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "listing:" + hex.EncodeToString(sum[:])
}

func invalidateListingCache(redisClient *redis.Client) {
	ctx := context.Background()
	const scanPattern = "listing:*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error executing pipeline for deleting %d listing cache keys: %v", len(keysToDelete), err)
		return
	}
	log.Printf("Listing cache invalidated, %d keys deleted", len(keysToDelete))
}
