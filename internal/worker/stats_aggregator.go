package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/logger"
)

// StatsAggregator consumes data-change notifications and keeps the latest
// stats snapshot current. Every reaction is a full recompute against the
// source collections, so replayed or reordered events converge to the same
// numbers.
type StatsAggregator struct {
	feed    repository.ChangeFeed
	users   repository.UserRepository
	courses repository.CourseRepository
	stats   repository.StatsRepository
}

// NewStatsAggregator creates a stats aggregator
func NewStatsAggregator(
	feed repository.ChangeFeed,
	users repository.UserRepository,
	courses repository.CourseRepository,
	stats repository.StatsRepository,
) *StatsAggregator {
	return &StatsAggregator{
		feed:    feed,
		users:   users,
		courses: courses,
		stats:   stats,
	}
}

// Start consumes the change feed until ctx is cancelled or the feed closes.
// Individual event failures are logged and skipped; a later event for the
// same collection repairs the snapshot.
func (w *StatsAggregator) Start(ctx context.Context) error {
	log := logger.Get()
	log.Info("Starting stats aggregator")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stats aggregator stopped")
			return ctx.Err()
		case ev, ok := <-w.feed.Events():
			if !ok {
				log.Info("Change feed closed, stats aggregator stopped")
				return nil
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				log.Error(fmt.Sprintf("Failed to apply %s change to stats: %v", ev.Collection, err))
			}
		}
	}
}

func (w *StatsAggregator) handleEvent(ctx context.Context, ev repository.Event) error {
	switch ev.Collection {
	case repository.CollectionUsers:
		return w.recomputeUserCounts(ctx)
	case repository.CollectionCourses:
		return w.recomputeViews(ctx)
	default:
		return nil
	}
}

func (w *StatsAggregator) recomputeUserCounts(ctx context.Context) error {
	latest, err := w.stats.Latest(ctx)
	if err != nil {
		return err
	}
	users, err := w.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	subscriptions, err := w.users.CountActiveSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return w.stats.SetUserCounts(ctx, latest.ID, users, subscriptions, time.Now())
}

func (w *StatsAggregator) recomputeViews(ctx context.Context) error {
	latest, err := w.stats.Latest(ctx)
	if err != nil {
		return err
	}
	views, err := w.courses.TotalViews(ctx)
	if err != nil {
		return fmt.Errorf("failed to sum course views: %w", err)
	}
	return w.stats.SetViews(ctx, latest.ID, views, time.Now())
}
