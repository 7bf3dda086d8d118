package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// JobRecorder appends crawl outcomes to the job ledger. Recording is
// best-effort: a ledger failure is logged, never propagated, so it cannot
// mask the outcome of the run itself.
type JobRecorder interface {
	Record(ctx context.Context, job *models.ScrapeJob)
}

type jobRecorder struct {
	db     *database.DB
	jobs   repositories.JobRepository
	logger *zap.Logger
}

// NewJobRecorder creates a JobRecorder backed by the connection pool.
func NewJobRecorder(db *database.DB, jobs repositories.JobRepository, logger *zap.Logger) JobRecorder {
	return &jobRecorder{
		db:     db,
		jobs:   jobs,
		logger: logger.Named("job-ledger"),
	}
}

var _ JobRecorder = (*jobRecorder)(nil)

func (r *jobRecorder) Record(ctx context.Context, job *models.ScrapeJob) {
	// The ledger must survive cancellation of the run that produced it.
	ctx = database.SetQuerier(context.WithoutCancel(ctx), r.db.Pool)

	if err := r.jobs.Create(ctx, job); err != nil {
		// The run is not silently lost: emit a synthetic ledger line with
		// status unknown so operators can reconcile later.
		r.logger.Error("Failed to record job run, ledger entry lost",
			zap.String("synthetic_status", models.JobStatusUnknown),
			zap.String("intended_status", job.Status),
			zap.Time("started_at", job.StartedAt),
			zap.Int("products_collected", job.ProductsCollected),
			zap.Error(err))
		return
	}

	r.logger.Info("Job run recorded",
		zap.String("status", job.Status),
		zap.Int("products_collected", job.ProductsCollected))
}
