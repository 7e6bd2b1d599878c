package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MemoryUserRepository is an in-memory UserRepository for tests and local
// development. Semantics mirror the Mongo implementation, including
// last-write-wins on Update.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]*domain.User
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[bson.ObjectID]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	cp := *u
	cp.Playlist = append([]domain.PlaylistItem(nil), u.Playlist...)
	return &cp
}

// Create inserts a user, enforcing email uniqueness
func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.E(domain.KindConflict, "User already exists")
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = copyUser(user)
	return nil
}

// GetByID returns the user or (nil, nil)
func (r *MemoryUserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

// GetByEmail returns the user or (nil, nil)
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// GetByResetToken returns the user holding an unexpired reset-token hash
func (r *MemoryUserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ResetPasswordToken == tokenHash && u.ResetPasswordExpire.After(time.Now()) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// Update replaces the stored user wholesale
func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.E(domain.KindNotFound, "User not found")
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = copyUser(user)
	return nil
}

// Delete removes the user
func (r *MemoryUserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.E(domain.KindNotFound, "User not found")
	}
	delete(r.users, id)
	return nil
}

// List returns all users
func (r *MemoryUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	return users, nil
}

// Count returns the total user count
func (r *MemoryUserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

// CountActiveSubscriptions counts users with an active subscription
func (r *MemoryUserRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, u := range r.users {
		if u.Subscription.Status == domain.SubscriptionActive {
			n++
		}
	}
	return n, nil
}
