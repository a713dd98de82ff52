package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dwello-app/rental_marketplace/badge"
	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/controllers"
	"github.com/dwello-app/rental_marketplace/models"
	"github.com/dwello-app/rental_marketplace/realtime"
	"github.com/dwello-app/rental_marketplace/routes"
	"github.com/dwello-app/rental_marketplace/session"
	"github.com/dwello-app/rental_marketplace/utils"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	sessionTTL    = 5 * time.Minute
	badgeInterval = 5 * time.Second
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

// lookupSession validates the JWT and loads the user row. Wrapped by the
// session cache so a burst of requests with the same token resolves once.
func lookupSession(ctx context.Context, token string) (session.Session, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return session.Session{}, err
	}

	var user models.User
	if err := config.UserCollection.FindOne(ctx, bson.M{"userID": claims.UserID}).Decode(&user); err != nil {
		return session.Session{}, err
	}

	return session.Session{UserID: user.UserID, Email: user.Email, Role: user.Role}, nil
}

func main() {
	loadEnv()

	client, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer config.CloseDBConnection(client)

	config.InitCollections(client)
	redisClient := config.InitRedis()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sessions := session.NewCache(sessionTTL, lookupSession)

	badges := badge.NewRefresher(badgeInterval, controllers.UnreadCount, controllers.StoreBadge(redisClient))
	go badges.Run(ctx)

	hub := realtime.NewHub()
	hub.OnConnect = func(userID string) {
		badges.Watch(userID)
		badges.Kick(userID)
	}
	hub.OnDisconnect = badges.Unwatch
	go hub.Run(ctx)

	router := mux.NewRouter()
	routes.Routes(router, redisClient, hub, badges, sessions)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
