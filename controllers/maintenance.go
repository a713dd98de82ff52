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
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var maintenanceTransitions = map[string][]string{
	models.MaintenanceOpen:       {models.MaintenanceInProgress, models.MaintenanceResolved},
	models.MaintenanceInProgress: {models.MaintenanceResolved},
	models.MaintenanceResolved:   {},
}

func CreateMaintenanceRequest(hub *realtime.Hub, badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var req models.MaintenanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Invalid maintenance request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.PropertyID == "" || req.Title == "" {
			http.Error(w, "propertyID and title are required", http.StatusBadRequest)
			return
		}

		objID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
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
			log.Printf("Property lookup failed for maintenance request: %v", err)
			http.Error(w, "Failed to create maintenance request", http.StatusInternalServerError)
			return
		}

		now := time.Now()
		req.ID = primitive.NewObjectID()
		req.TenantID = userID
		req.LandlordID = property.OwnerID
		req.Status = models.MaintenanceOpen
		req.CreatedAt = now
		req.UpdatedAt = now

		if _, err := config.MaintenanceCollection.InsertOne(r.Context(), req); err != nil {
			log.Printf("Maintenance insert failed: %v", err)
			http.Error(w, "Failed to create maintenance request", http.StatusInternalServerError)
			return
		}

		createNotification(r.Context(), hub, badges, models.Notification{
			UserID: req.LandlordID,
			Type:   models.NotifyMaintenance,
			Title:  "New maintenance request",
			Body:   req.Title,
			RefID:  req.ID.Hex(),
		})

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Maintenance request created",
			Data:    req,
		})
	}
}

// GetMaintenanceRequests lists the viewer's requests: tenants see what they
// filed, landlords see what was filed against their properties.
func GetMaintenanceRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		role, _ := r.Context().Value(UserRoleKey).(string)
		filter := bson.M{"tenantID": userID}
		if role == models.RoleLandlord {
			filter = bson.M{"landlordID": userID}
		}
		if status := r.URL.Query().Get("status"); status != "" {
			filter["status"] = status
		}

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := config.MaintenanceCollection.Find(r.Context(), filter, opts)
		if err != nil {
			log.Printf("Error fetching maintenance requests for %s: %v", userID, err)
			http.Error(w, "Failed to fetch maintenance requests", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var requests []models.MaintenanceRequest
		if err := cursor.All(r.Context(), &requests); err != nil {
			log.Printf("Error decoding maintenance requests: %v", err)
			http.Error(w, "Failed to decode maintenance requests", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched maintenance requests",
			Data:    requests,
		})
	}
}

func UpdateMaintenanceStatus(hub *realtime.Hub, badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		requestID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(requestID)
		if err != nil {
			http.Error(w, "Invalid request ID", http.StatusBadRequest)
			return
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var req models.MaintenanceRequest
		err = config.MaintenanceCollection.FindOne(r.Context(), bson.M{"_id": objID, "landlordID": userID}).Decode(&req)
		if err == mongo.ErrNoDocuments {
			http.Error(w, "No request found or unauthorized", http.StatusForbidden)
			return
		}
		if err != nil {
			log.Printf("Maintenance lookup failed for %s: %v", requestID, err)
			http.Error(w, "Failed to update maintenance request", http.StatusInternalServerError)
			return
		}

		if !transitionAllowed(req.Status, body.Status) {
			http.Error(w, "Invalid status transition", http.StatusBadRequest)
			return
		}

		_, err = config.MaintenanceCollection.UpdateOne(r.Context(),
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{"status": body.Status, "updatedAt": time.Now()}})
		if err != nil {
			log.Printf("Maintenance status update failed for %s: %v", requestID, err)
			http.Error(w, "Failed to update maintenance request", http.StatusInternalServerError)
			return
		}

		createNotification(r.Context(), hub, badges, models.Notification{
			UserID: req.TenantID,
			Type:   models.NotifyMaintenance,
			Title:  "Maintenance request " + body.Status,
			Body:   req.Title,
			RefID:  req.ID.Hex(),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Maintenance status updated",
		})
	}
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range maintenanceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
