package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var user models.User
		err := config.UserCollection.FindOne(r.Context(), bson.M{"userID": userID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching profile for %s: %v", userID, err)
			http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
			return
		}
		user.Password = ""

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	}
}

// UpdateProfile writes the editable profile fields and drops the viewer's
// cached session so the next request sees the update.
func UpdateProfile(sessions *session.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var body struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		update := bson.M{}
		if body.Name != "" {
			update["name"] = body.Name
		}
		if body.Phone != "" {
			update["phone"] = body.Phone
		}
		if body.Email != "" {
			update["email"] = body.Email
		}
		if len(update) == 0 {
			http.Error(w, "Nothing to update", http.StatusBadRequest)
			return
		}

		res, err := config.UserCollection.UpdateOne(r.Context(), bson.M{"userID": userID}, bson.M{"$set": update})
		if err != nil {
			log.Printf("Profile update failed for %s: %v", userID, err)
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}
		if res.MatchedCount == 0 {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		if token, ok := r.Context().Value(TokenKey).(string); ok {
			sessions.Invalidate(token)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated"})
	}
}
