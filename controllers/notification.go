package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dwello-app/rental_marketplace/badge"
	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const badgeTTL = time.Minute

func badgeKey(userID string) string {
	return "badge:" + userID
}

func GetNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
		cursor, err := config.NotificationCollection.Find(r.Context(), bson.M{"userID": userID}, opts)
		if err != nil {
			log.Printf("Error fetching notifications for %s: %v", userID, err)
			http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var notifications []models.Notification
		if err := cursor.All(r.Context(), &notifications); err != nil {
			log.Printf("Error decoding notifications for %s: %v", userID, err)
			http.Error(w, "Failed to decode notifications", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched notifications",
			Data:    notifications,
		})
	}
}

func MarkNotificationsRead(badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		res, err := config.NotificationCollection.UpdateMany(r.Context(),
			bson.M{"userID": userID, "read": false},
			bson.M{"$set": bson.M{"read": true}})
		if err != nil {
			log.Printf("Mark notifications read failed for %s: %v", userID, err)
			http.Error(w, "Failed to mark notifications read", http.StatusInternalServerError)
			return
		}

		badges.Kick(userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Notifications marked read",
			Data:    map[string]int64{"updated": res.ModifiedCount},
		})
	}
}

// GetBadge reads the stored unread count. On a cache miss it recomputes
// directly, so the endpoint stays correct even before the refresher's first
// pass.
func GetBadge(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var count int64
		cached, err := redisClient.Get(r.Context(), badgeKey(userID)).Result()
		if err == nil {
			count, _ = strconv.ParseInt(cached, 10, 64)
		} else {
			if err != redis.Nil {
				log.Printf("Redis GET error for badge of %s: %v", userID, err)
			}
			count, err = UnreadCount(r.Context(), userID)
			if err != nil {
				log.Printf("Unread recount failed for %s: %v", userID, err)
				http.Error(w, "Failed to compute unread count", http.StatusInternalServerError)
				return
			}
			if err := StoreBadge(redisClient)(r.Context(), userID, count); err != nil {
				log.Printf("Badge store failed for %s: %v", userID, err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"unread": count})
	}
}

// UnreadCount is the single recompute behind both the badge poll and
// event-driven kicks: unread messages plus unread notifications.
func UnreadCount(ctx context.Context, userID string) (int64, error) {
	msgs, err := config.MessageCollection.CountDocuments(ctx, bson.M{"toID": userID, "read": false})
	if err != nil {
		return 0, err
	}
	notifs, err := config.NotificationCollection.CountDocuments(ctx, bson.M{"userID": userID, "read": false})
	if err != nil {
		return 0, err
	}
	return msgs + notifs, nil
}

// StoreBadge publishes a recomputed count to Redis with a short TTL.
func StoreBadge(redisClient *redis.Client) badge.StoreFunc {
	return func(ctx context.Context, userID string, count int64) error {
		return redisClient.Set(ctx, badgeKey(userID), count, badgeTTL).Err()
	}
}

// createNotification persists and pushes one notification, then kicks the
// badge refresh for the recipient.
func createNotification(ctx context.Context, hub *realtime.Hub, badges *badge.Refresher, n models.Notification) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt = time.Now()

	if _, err := config.NotificationCollection.InsertOne(ctx, n); err != nil {
		log.Printf("Notification insert failed for %s: %v", n.UserID, err)
		return
	}

	hub.Send(n.UserID, realtime.Event{Type: realtime.EventNotification, Payload: n})
	badges.Kick(n.UserID)
}
