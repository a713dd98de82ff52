package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dwello-app/rental_marketplace/badge"
	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordPayment stores a rent payment in the viewer's history. Settlement
// happens outside this service; the record carries a uuid reference for
// matching against the processor's statement.
func RecordPayment(hub *realtime.Hub, badges *badge.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var payment models.Payment
		if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
			log.Printf("Invalid payment body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payment.PropertyID == "" || payment.Amount <= 0 || payment.Month == "" {
			http.Error(w, "propertyID, month and a positive amount are required", http.StatusBadRequest)
			return
		}
		if _, err := time.Parse("2006-01", payment.Month); err != nil {
			http.Error(w, "month must be formatted YYYY-MM", http.StatusBadRequest)
			return
		}

		objID, err := primitive.ObjectIDFromHex(payment.PropertyID)
		if err != nil {
			http.Error(w, "Invalid property ID", http.StatusBadRequest)
			return
		}

		var property models.Property
		err = config.PropertyCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Property lookup failed for payment: %v", err)
			http.Error(w, "Failed to record payment", http.StatusInternalServerError)
			return
		}

		payment.ID = primitive.NewObjectID()
		payment.Reference = uuid.NewString()
		payment.TenantID = userID
		payment.LandlordID = property.OwnerID
		payment.Status = models.PaymentCompleted
		payment.PaidAt = time.Now()

		if _, err := config.PaymentCollection.InsertOne(r.Context(), payment); err != nil {
			log.Printf("Payment insert failed: %v", err)
			http.Error(w, "Failed to record payment", http.StatusInternalServerError)
			return
		}

		createNotification(r.Context(), hub, badges, models.Notification{
			UserID: payment.LandlordID,
			Type:   models.NotifyPayment,
			Title:  "Rent payment received",
			Body:   fmt.Sprintf("%s paid %.2f for %s", userID, payment.Amount, payment.Month),
			RefID:  payment.Reference,
		})

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Payment recorded",
			Data:    payment,
		})
	}
}

// GetPayments returns the viewer's payment history, newest first. Tenants
// and landlords both see the rows they are a party to.
func GetPayments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		filter := bson.M{"$or": bson.A{
			bson.M{"tenantID": userID},
			bson.M{"landlordID": userID},
		}}
		if propertyID := r.URL.Query().Get("property"); propertyID != "" {
			filter = bson.M{"$and": bson.A{filter, bson.M{"propertyID": propertyID}}}
		}

		opts := options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}})
		cursor, err := config.PaymentCollection.Find(r.Context(), filter, opts)
		if err != nil {
			log.Printf("Error fetching payments for %s: %v", userID, err)
			http.Error(w, "Failed to fetch payments", http.StatusInternalServerError)
			return
		}
		defer cursor.Close(r.Context())

		var payments []models.Payment
		if err := cursor.All(r.Context(), &payments); err != nil {
			log.Printf("Error decoding payments: %v", err)
			http.Error(w, "Failed to decode payments", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched payments",
			Data:    payments,
		})
	}
}
