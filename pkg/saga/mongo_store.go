package saga

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store using a MongoDB collection. Instances are
// written after every step, so the collection doubles as the reconciliation
// log for sagas interrupted between an external side effect and local
// cleanup.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a Mongo-backed saga store
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

// Save persists a new instance
func (s *MongoStore) Save(ctx context.Context, instance *Instance) error {
	if _, err := s.coll.InsertOne(ctx, instance); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrInstanceExists
		}
		return fmt.Errorf("failed to save saga instance: %w", err)
	}
	return nil
}

// Get retrieves an instance by id
func (s *MongoStore) Get(ctx context.Context, id string) (*Instance, error) {
	var instance Instance
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&instance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get saga instance: %w", err)
	}
	return &instance, nil
}

// Update overwrites an existing instance
func (s *MongoStore) Update(ctx context.Context, instance *Instance) error {
	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": instance.ID}, instance)
	if err != nil {
		return fmt.Errorf("failed to update saga instance: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInstanceNotFound
	}
	return nil
}

// ListByStatus returns instances with the given status, oldest first
func (s *MongoStore) ListByStatus(ctx context.Context, status Status, limit int) ([]*Instance, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list saga instances: %w", err)
	}
	defer cursor.Close(ctx)

	var instances []*Instance
	if err := cursor.All(ctx, &instances); err != nil {
		return nil, fmt.Errorf("failed to decode saga instances: %w", err)
	}
	return instances, nil
}
