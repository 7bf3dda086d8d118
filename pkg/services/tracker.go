package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// Scraper produces one full batch of observed products. Implemented by the
// headless-browser collaborator in pkg/scraper.
type Scraper interface {
	Scrape(ctx context.Context) ([]*models.ObservedProduct, error)
}

// RunStatus describes the tracker for the status endpoint.
type RunStatus struct {
	Running    bool                 `json:"running"`
	LastResult *models.IngestResult `json:"last_result,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
	LastRunAt  *time.Time           `json:"last_run_at,omitempty"`
}

// Tracker runs the full pipeline: scrape, ingest, record. At most one run is
// active at a time; a trigger firing while a run is in flight is rejected
// with ErrRunInProgress rather than queued.
type Tracker struct {
	scraper  Scraper
	ingest   IngestService
	recorder JobRecorder
	logger   *zap.Logger

	running atomic.Bool

	mu         sync.Mutex
	lastResult *models.IngestResult
	lastErr    error
	lastRunAt  time.Time
}

// NewTracker creates a Tracker.
func NewTracker(scraper Scraper, ingest IngestService, recorder JobRecorder, logger *zap.Logger) *Tracker {
	return &Tracker{
		scraper:  scraper,
		ingest:   ingest,
		recorder: recorder,
		logger:   logger.Named("tracker"),
	}
}

// Run executes one crawl-and-ingest cycle. Every invocation produces exactly
// one job ledger entry, success or failure.
func (t *Tracker) Run(ctx context.Context) (*models.IngestResult, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrRunInProgress
	}
	defer t.running.Store(false)

	startedAt := time.Now()
	t.logger.Info("Crawl run starting")

	batch, err := t.scraper.Scrape(ctx)
	if err == nil && len(batch) == 0 {
		err = apperrors.ErrEmptyBatch
	}

	var result *models.IngestResult
	if err == nil {
		// A fresh timestamp per run keeps aggregate rows at-most-once per
		// batch even across retries.
		result, err = t.ingest.Ingest(ctx, batch, time.Now().UTC())
	}

	t.finish(ctx, startedAt, result, err)
	if err != nil {
		t.logger.Error("Crawl run failed", zap.Error(err))
		return nil, err
	}

	t.logger.Info("Crawl run finished",
		zap.Int("persisted", result.Persisted),
		zap.Duration("duration", time.Since(startedAt)))
	return result, nil
}

// Status reports whether a run is active and the outcome of the last one.
func (t *Tracker) Status() RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	status := RunStatus{
		Running:    t.running.Load(),
		LastResult: t.lastResult,
	}
	if t.lastErr != nil {
		status.LastError = t.lastErr.Error()
	}
	if !t.lastRunAt.IsZero() {
		at := t.lastRunAt
		status.LastRunAt = &at
	}
	return status
}

func (t *Tracker) finish(ctx context.Context, startedAt time.Time, result *models.IngestResult, runErr error) {
	completedAt := time.Now()
	duration := int(completedAt.Sub(startedAt).Seconds())

	job := &models.ScrapeJob{
		StartedAt:       startedAt,
		CompletedAt:     &completedAt,
		DurationSeconds: &duration,
	}
	if runErr != nil {
		job.Status = models.JobStatusFailed
		msg := runErr.Error()
		job.ErrorMessage = &msg
	} else {
		job.Status = models.JobStatusSuccess
		job.ProductsCollected = result.Persisted
	}
	t.recorder.Record(ctx, job)

	t.mu.Lock()
	t.lastResult = result
	t.lastErr = runErr
	t.lastRunAt = startedAt
	t.mu.Unlock()
}
