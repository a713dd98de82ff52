package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	PropertyCollection     *mongo.Collection
	StatsCollection        *mongo.Collection
	ReviewCollection       *mongo.Collection
	FavoriteCollection     *mongo.Collection
	MessageCollection      *mongo.Collection
	MaintenanceCollection  *mongo.Collection
	PaymentCollection      *mongo.Collection
	NotificationCollection *mongo.Collection
)

func ConnectDB() (*mongo.Client, error) {
	mongoURI := os.Getenv("MONGOURI")
	if mongoURI == "" {
		return nil, fmt.Errorf("MONGOURI not set in environment")
	}

	clientOptions := options.Client().ApplyURI(mongoURI)
	client, err := mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("MongoDB ping failed: %v", err)
	}

	log.Println("Connected to MongoDB")
	return client, nil
}

func InitCollections(client *mongo.Client) {
	dbName := os.Getenv("DB")
	db := client.Database(dbName)
	UserCollection = db.Collection("users")
	PropertyCollection = db.Collection("properties")
	StatsCollection = db.Collection("property_stats")
	ReviewCollection = db.Collection("reviews")
	FavoriteCollection = db.Collection("favorites")
	MessageCollection = db.Collection("messages")
	MaintenanceCollection = db.Collection("maintenance_requests")
	PaymentCollection = db.Collection("payments")
	NotificationCollection = db.Collection("notifications")
}

func CloseDBConnection(client *mongo.Client) {
	if err := client.Disconnect(context.TODO()); err != nil {
		log.Fatalf("Error closing database connection: %v", err)
	}
	log.Println("MongoDB connection closed")
}
