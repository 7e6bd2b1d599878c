package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// UserRepository defines persistence operations for users.
// Lookup methods return (nil, nil) when no document matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id bson.ObjectID) error
	List(ctx context.Context) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
}
