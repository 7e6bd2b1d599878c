package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/logger"
)

// SnapshotScheduler appends a fresh zero-valued stats row on a cron cadence.
// Once a new row exists the aggregator targets it, so earlier rows become the
// immutable history shown on the admin dashboard.
type SnapshotScheduler struct {
	stats repository.StatsRepository
	expr  string
	cron  *cron.Cron
}

// NewSnapshotScheduler creates a scheduler for the given cron expression
func NewSnapshotScheduler(stats repository.StatsRepository, expr string) *SnapshotScheduler {
	return &SnapshotScheduler{
		stats: stats,
		expr:  expr,
		cron:  cron.New(),
	}
}

// Start registers the job and starts the cron runner
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	log := logger.Get()

	_, err := s.cron.AddFunc(s.expr, func() {
		if err := s.stats.Append(ctx); err != nil {
			log.Error(fmt.Sprintf("Failed to append stats snapshot: %v", err))
			return
		}
		log.Info("Appended new stats snapshot")
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.expr, err)
	}

	s.cron.Start()
	log.Info(fmt.Sprintf("Snapshot scheduler started with schedule %q", s.expr))
	return nil
}

// Stop stops the cron runner and waits for a running job to finish
func (s *SnapshotScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Info("Snapshot scheduler stopped")
}
