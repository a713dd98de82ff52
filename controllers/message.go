package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dwello-app/rental_marketplace/badge"
	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/realtime"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SendMessage(hub *realtime.Hub, badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var msg models.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			log.Printf("Invalid message body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if msg.ToID == "" || msg.Body == "" {
			http.Error(w, "toID and body are required", http.StatusBadRequest)
			return
		}
		if msg.ToID == userID {
			http.Error(w, "Cannot message yourself", http.StatusBadRequest)
			return
		}

		if err := config.UserCollection.FindOne(r.Context(), bson.M{"userID": msg.ToID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				http.Error(w, "Recipient not found", http.StatusBadRequest)
				return
			}
			log.Printf("Recipient lookup failed: %v", err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}

		msg.ID = primitive.NewObjectID()
		msg.FromID = userID
		msg.Read = false
		msg.CreatedAt = time.Now()

		if _, err := config.MessageCollection.InsertOne(r.Context(), msg); err != nil {
			log.Printf("Message insert failed: %v", err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}

		hub.Send(msg.ToID, realtime.Event{Type: realtime.EventMessage, Payload: msg})
		badges.Kick(msg.ToID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Message sent",
			Data:    msg,
		})
	}
}

// GetThread returns the two-way conversation between the viewer and another
// user, optionally narrowed to one property, oldest first.
func GetThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		otherID := r.URL.Query().Get("with")
		if otherID == "" {
			http.Error(w, "with parameter is required", http.StatusBadRequest)
			return
		}

		filter := bson.M{"$or": bson.A{
			bson.M{"fromID": userID, "toID": otherID},
			bson.M{"fromID": otherID, "toID": userID},
		}}
		if propertyID := r.URL.Query().Get("property"); propertyID != "" {
			filter["propertyID"] = propertyID
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
		cursor, err := config.MessageCollection.Find(r.Context(), filter, opts)
		if err != nil {
			log.Printf("Error fetching thread for %s/%s: %v", userID, otherID, err)
			http.Error(w, "Failed to fetch messages", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var messages []models.Message
		if err := cursor.All(r.Context(), &messages); err != nil {
			log.Printf("Error decoding thread: %v", err)
			http.Error(w, "Failed to decode messages", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched messages",
			Data:    messages,
		})
	}
}

// MarkThreadRead marks everything the given sender wrote to the viewer as
// read and kicks a badge refresh so the unread count settles.
func MarkThreadRead(badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var body struct {
			FromID     string `json:"fromID"`
			PropertyID string `json:"propertyID"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if body.FromID == "" {
			http.Error(w, "fromID is required", http.StatusBadRequest)
			return
		}

		filter := bson.M{"fromID": body.FromID, "toID": userID, "read": false}
		if body.PropertyID != "" {
			filter["propertyID"] = body.PropertyID
		}

		res, err := config.MessageCollection.UpdateMany(r.Context(), filter, bson.M{"$set": bson.M{"read": true}})
		if err != nil {
			log.Printf("Mark read failed for %s: %v", userID, err)
			http.Error(w, "Failed to mark messages read", http.StatusInternalServerError)
			return
		}

		badges.Kick(userID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Messages marked read",
			Data:    map[string]int64{"updated": res.ModifiedCount},
		})
	}
}
