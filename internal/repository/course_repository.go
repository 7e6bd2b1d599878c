package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// CourseRepository defines persistence operations for courses
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id bson.ObjectID) (*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id bson.ObjectID) error
	// List returns courses matching the keyword/category filters with
	// lectures stripped (listing never exposes lecture content).
	List(ctx context.Context, keyword, category string) ([]*domain.Course, error)
	// TotalViews sums views across all courses
	TotalViews(ctx context.Context) (int64, error)
}

// PaymentRepository defines persistence operations for payment receipts
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	// GetBySubscriptionID returns (nil, nil) when no receipt matches
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Payment, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}
