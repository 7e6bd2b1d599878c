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

// MongoPaymentRepository implements PaymentRepository backed by MongoDB
type MongoPaymentRepository struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepository creates a Mongo-backed payment repository
func NewMongoPaymentRepository(db *mongo.Database) *MongoPaymentRepository {
	return &MongoPaymentRepository{coll: db.Collection(paymentsCollection)}
}

// Create inserts an immutable payment receipt
func (r *MongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = bson.NewObjectID()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetBySubscriptionID returns the receipt or (nil, nil) when absent
func (r *MongoPaymentRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.coll.FindOne(ctx, bson.M{"razorpay_subscription_id": subscriptionID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

// Delete removes the receipt
func (r *MongoPaymentRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.E(domain.KindNotFound, "Payment not found")
	}
	return nil
}
