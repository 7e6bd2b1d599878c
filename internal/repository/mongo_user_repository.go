package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MongoUserRepository implements UserRepository backed by MongoDB
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a Mongo-backed user repository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

// Create inserts a user; duplicate emails surface as a Conflict
func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.E(domain.KindConflict, "User already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns the user or (nil, nil) when absent
func (r *MongoUserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail returns the user or (nil, nil) when absent
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByResetToken returns the user holding an unexpired reset-token hash
func (r *MongoUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": time.Now()},
	})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// Update replaces the whole document. Last write wins: no concurrency token
// is carried, so concurrent updates to the same user can silently drop one
// side's change.
func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.E(domain.KindConflict, "Email already in use")
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.E(domain.KindNotFound, "User not found")
	}
	return nil
}

// Delete removes the user document
func (r *MongoUserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.E(domain.KindNotFound, "User not found")
	}
	return nil
}

// List returns all users
func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// Count returns the total user count
func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// CountActiveSubscriptions counts users whose subscription is active
func (r *MongoUserRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"subscription.status": domain.SubscriptionActive})
}
