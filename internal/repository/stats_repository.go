package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
)

// ErrNoSnapshot is returned when a reaction fires before any snapshot row
// exists. Callers must provision a genesis row at initialization.
var ErrNoSnapshot = errors.New("no stats snapshot exists")

// StatsRepository manages the append-only stats snapshot sequence. The
// aggregator always mutates the latest row, never historical ones, and the
// Set* writes are single atomic updates keyed by row id so overlapping
// reactions cannot interleave a read-modify-write.
type StatsRepository interface {
	// EnsureGenesis inserts a zero snapshot if none exists yet
	EnsureGenesis(ctx context.Context) error
	// Append inserts a brand-new zero snapshot, which becomes the new
	// reconciliation target
	Append(ctx context.Context) error
	// Latest returns the most recently created snapshot or ErrNoSnapshot
	Latest(ctx context.Context) (*domain.StatsSnapshot, error)
	// SetViews overwrites the views counter on the given row
	SetViews(ctx context.Context, id bson.ObjectID, views int64, at time.Time) error
	// SetUserCounts overwrites the user counters on the given row
	SetUserCounts(ctx context.Context, id bson.ObjectID, users, subscriptions int64, at time.Time) error
	// Recent returns up to limit snapshots, newest first
	Recent(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error)
}
