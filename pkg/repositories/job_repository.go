package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// JobRepository provides data access for the crawl job ledger.
type JobRepository interface {
	Create(ctx context.Context, job *models.ScrapeJob) error
	// Recent returns job runs, most recent first.
	Recent(ctx context.Context, limit int) ([]*models.ScrapeJob, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

type jobRepository struct{}

func NewJobRepository() JobRepository {
	return &jobRepository{}
}

var _ JobRepository = (*jobRepository)(nil)

func (r *jobRepository) Create(ctx context.Context, job *models.ScrapeJob) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	query := `
		INSERT INTO scrape_jobs (
			id, started_at, completed_at, status, products_collected,
			error_message, duration_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := q.Exec(ctx, query,
		job.ID, job.StartedAt, job.CompletedAt, job.Status,
		job.ProductsCollected, job.ErrorMessage, job.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to create job record: %w", err)
	}
	return nil
}

func (r *jobRepository) Recent(ctx context.Context, limit int) ([]*models.ScrapeJob, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	if limit <= 0 || limit > 200 {
		limit = 20
	}

	query := `
		SELECT id, started_at, completed_at, status, products_collected,
		       error_message, duration_seconds, created_at
		FROM scrape_jobs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job history: %w", err)
	}
	defer rows.Close()

	var result []*models.ScrapeJob
	for rows.Next() {
		var job models.ScrapeJob
		if err := rows.Scan(
			&job.ID, &job.StartedAt, &job.CompletedAt, &job.Status,
			&job.ProductsCollected, &job.ErrorMessage, &job.DurationSeconds,
			&job.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job record: %w", err)
		}
		result = append(result, &job)
	}
	return result, rows.Err()
}

func (r *jobRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM scrape_jobs`)
}

func (r *jobRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM scrape_jobs WHERE status = $1`, status)
}

func (r *jobRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return 0, apperrors.ErrNoConnection
	}

	var count int
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}
