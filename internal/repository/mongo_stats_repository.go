package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MongoStatsRepository implements StatsRepository backed by MongoDB
type MongoStatsRepository struct {
	coll *mongo.Collection
}

// NewMongoStatsRepository creates a Mongo-backed stats repository
func NewMongoStatsRepository(db *mongo.Database) *MongoStatsRepository {
	return &MongoStatsRepository{coll: db.Collection(statsCollection)}
}

// EnsureGenesis inserts a zero snapshot if the collection is empty
func (r *MongoStatsRepository) EnsureGenesis(ctx context.Context) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count stats snapshots: %w", err)
	}
	if count > 0 {
		return nil
	}
	return r.Append(ctx)
}

// Append inserts a brand-new zero snapshot
func (r *MongoStatsRepository) Append(ctx context.Context) error {
	snapshot := &domain.StatsSnapshot{
		ID:        bson.NewObjectID(),
		CreatedAt: time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to append stats snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently created snapshot
func (r *MongoStatsRepository) Latest(ctx context.Context) (*domain.StatsSnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var snapshot domain.StatsSnapshot
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// SetViews overwrites the views counter with a single $set, avoiding a
// read-modify-write of the row
func (r *MongoStatsRepository) SetViews(ctx context.Context, id bson.ObjectID, views int64, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"views":      views,
		"created_at": at,
	}})
	if err != nil {
		return fmt.Errorf("failed to set snapshot views: %w", err)
	}
	return nil
}

// SetUserCounts overwrites the user counters with a single $set
func (r *MongoStatsRepository) SetUserCounts(ctx context.Context, id bson.ObjectID, users, subscriptions int64, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"users":        users,
		"subscription": subscriptions,
		"created_at":   at,
	}})
	if err != nil {
		return fmt.Errorf("failed to set snapshot user counts: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots, newest first
func (r *MongoStatsRepository) Recent(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []*domain.StatsSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}
