package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// MemoryStatsRepository is an in-memory StatsRepository for tests
type MemoryStatsRepository struct {
	mu        sync.RWMutex
	snapshots []*domain.StatsSnapshot
}

// NewMemoryStatsRepository creates an empty in-memory stats repository
func NewMemoryStatsRepository() *MemoryStatsRepository {
	return &MemoryStatsRepository{}
}

// EnsureGenesis inserts a zero snapshot if none exists
func (r *MemoryStatsRepository) EnsureGenesis(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) > 0 {
		return nil
	}
	r.append()
	return nil
}

// Append inserts a brand-new zero snapshot
func (r *MemoryStatsRepository) Append(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.append()
	return nil
}

func (r *MemoryStatsRepository) append() {
	r.snapshots = append(r.snapshots, &domain.StatsSnapshot{
		ID:        bson.NewObjectID(),
		CreatedAt: time.Now(),
	})
}

// Latest returns the most recently appended snapshot
func (r *MemoryStatsRepository) Latest(ctx context.Context) (*domain.StatsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.snapshots) == 0 {
		return nil, ErrNoSnapshot
	}
	cp := *r.snapshots[len(r.snapshots)-1]
	return &cp, nil
}

// SetViews overwrites the views counter on the given row
func (r *MemoryStatsRepository) SetViews(ctx context.Context, id bson.ObjectID, views int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.snapshots {
		if s.ID == id {
			s.Views = views
			s.CreatedAt = at
		}
	}
	return nil
}

// SetUserCounts overwrites the user counters on the given row
func (r *MemoryStatsRepository) SetUserCounts(ctx context.Context, id bson.ObjectID, users, subscriptions int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.snapshots {
		if s.ID == id {
			s.Users = users
			s.Subscriptions = subscriptions
			s.CreatedAt = at
		}
	}
	return nil
}

// Recent returns up to limit snapshots, newest first
func (r *MemoryStatsRepository) Recent(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.StatsSnapshot
	for i := len(r.snapshots) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.snapshots[i]
		out = append(out, &cp)
	}
	return out, nil
}
