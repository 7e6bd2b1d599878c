package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	coursesCollection  = "courses"
	paymentsCollection = "payments"
	statsCollection    = "stats"
	sagaCollection     = "saga_instances"
)

// ConnectMongo connects to MongoDB and verifies the connection
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on. Email
// uniqueness is enforced here, at the storage layer.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}

	_, err = db.Collection(paymentsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "razorpay_subscription_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create payment index: %w", err)
	}

	_, err = db.Collection(statsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create stats index: %w", err)
	}
	return nil
}
