package routes

import (
	"github.com/dwello-app/rental_marketplace/badge"
	"github.com/dwello-app/rental_marketplace/controllers"
	"github.com/dwello-app/rental_marketplace/middleware"
	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/dwello-app/rental_marketplace/session"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func Routes(router *mux.Router, redisClient *redis.Client, hub *realtime.Hub, badges *badge.Refresher, sessions *session.Cache) {
	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser()).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser()).Methods("POST")

	// Realtime feed (token authenticated via query parameter)
	router.HandleFunc("/ws", controllers.ServeWS(hub, sessions)).Methods("GET")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.Auth(sessions))

	// Profile routes
	authenticated.HandleFunc("/me", controllers.GetProfile()).Methods("GET")
	authenticated.HandleFunc("/me", controllers.UpdateProfile(sessions)).Methods("PUT")

	// Property routes; /properties/compare must register before /properties/{id}
	authenticated.HandleFunc("/properties", controllers.CreateProperty(redisClient)).Methods("POST")
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(redisClient)).Methods("GET")
	authenticated.HandleFunc("/properties/compare", controllers.CompareProperties()).Methods("GET")
	authenticated.HandleFunc("/properties/compare", controllers.ToggleCompare()).Methods("POST")
	authenticated.HandleFunc("/properties/compare", controllers.ClearCompare()).Methods("DELETE")
	authenticated.HandleFunc("/properties/{id}", controllers.GetPropertyByID()).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(redisClient)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(redisClient)).Methods("DELETE")
	authenticated.HandleFunc("/properties/{id}/status", controllers.UpdatePropertyStatus(redisClient)).Methods("PATCH")
	authenticated.HandleFunc("/properties/{id}/favorite", controllers.ToggleFavorite(redisClient)).Methods("POST")
	authenticated.HandleFunc("/properties/{id}/reviews", controllers.CreateReview(redisClient)).Methods("POST")
	authenticated.HandleFunc("/properties/{id}/reviews", controllers.GetReviews()).Methods("GET")

	// Favorites routes
	authenticated.HandleFunc("/favorites", controllers.AddFavorite(redisClient)).Methods("POST")
	authenticated.HandleFunc("/favorites", controllers.GetFavorites()).Methods("GET")
	authenticated.HandleFunc("/favorites/{propertyID}", controllers.RemoveFavorite(redisClient)).Methods("DELETE")

	// Messaging routes
	authenticated.HandleFunc("/messages", controllers.SendMessage(hub, badges)).Methods("POST")
	authenticated.HandleFunc("/messages", controllers.GetThread()).Methods("GET")
	authenticated.HandleFunc("/messages/read", controllers.MarkThreadRead(badges)).Methods("POST")

	// Maintenance routes
	authenticated.HandleFunc("/maintenance", controllers.CreateMaintenanceRequest(hub, badges)).Methods("POST")
	authenticated.HandleFunc("/maintenance", controllers.GetMaintenanceRequests()).Methods("GET")
	authenticated.HandleFunc("/maintenance/{id}", controllers.UpdateMaintenanceStatus(hub, badges)).Methods("PATCH")

	// Payment routes
	authenticated.HandleFunc("/payments", controllers.RecordPayment(hub, badges)).Methods("POST")
	authenticated.HandleFunc("/payments", controllers.GetPayments()).Methods("GET")

	// Notification routes
	authenticated.HandleFunc("/notifications", controllers.GetNotifications()).Methods("GET")
	authenticated.HandleFunc("/notifications/read", controllers.MarkNotificationsRead(badges)).Methods("POST")
	authenticated.HandleFunc("/badge", controllers.GetBadge(redisClient)).Methods("GET")
}
