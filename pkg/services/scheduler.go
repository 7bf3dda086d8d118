package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
)

// Scheduler fires the tracker on a fixed interval. Overlapping triggers are
// coalesced: if a run is still active when the ticker fires, that tick is
// skipped, never queued.
type Scheduler struct {
	tracker    *Tracker
	interval   time.Duration
	runOnStart bool
	logger     *zap.Logger
}

// NewScheduler creates a Scheduler around the tracker.
func NewScheduler(tracker *Tracker, interval time.Duration, runOnStart bool, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tracker:    tracker,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger.Named("scheduler"),
	}
}

// Run blocks until ctx is cancelled, triggering a crawl every interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	if s.runOnStart {
		s.trigger(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	if _, err := s.tracker.Run(ctx); err != nil {
		if errors.Is(err, apperrors.ErrRunInProgress) {
			s.logger.Warn("Previous run still active, skipping this tick")
			return
		}
		// Run failures are already recorded in the job ledger; the
		// scheduler keeps ticking.
		s.logger.Error("Scheduled run failed", zap.Error(err))
	}
}
