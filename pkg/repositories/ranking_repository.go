package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// RankingRepository provides data access for the append-only observation
// history.
type RankingRepository interface {
	Insert(ctx context.Context, obs *models.Observation) error
	// LatestBefore returns the observation for productID with the greatest
	// collected_at strictly earlier than ts. Returns apperrors.ErrNotFound
	// on first sighting.
	LatestBefore(ctx context.Context, productID string, ts time.Time) (*models.Observation, error)
	// History returns all observations for one product since the given
	// time, ascending.
	History(ctx context.Context, productID string, since time.Time) ([]*models.Observation, error)
	// LatestCollectedAt returns the most recent committed batch timestamp.
	LatestCollectedAt(ctx context.Context) (time.Time, error)
	FirstCollectedAt(ctx context.Context) (time.Time, error)
	Count(ctx context.Context) (int, error)
}

type rankingRepository struct{}

func NewRankingRepository() RankingRepository {
	return &rankingRepository{}
}

var _ RankingRepository = (*rankingRepository)(nil)

func (r *rankingRepository) Insert(ctx context.Context, obs *models.Observation) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO ranking_history (
			product_id, ranking, original_price, sale_price, discount_rate, collected_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := q.QueryRow(ctx, query,
		obs.ProductID, obs.Ranking, obs.OriginalPrice, obs.SalePrice,
		obs.DiscountRate, obs.CollectedAt,
	).Scan(&obs.ID)
	if err != nil {
		return fmt.Errorf("failed to insert observation for %s: %w", obs.ProductID, err)
	}
	return nil
}

func (r *rankingRepository) LatestBefore(ctx context.Context, productID string, ts time.Time) (*models.Observation, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	query := `
		SELECT id, product_id, ranking, original_price, sale_price, discount_rate, collected_at
		FROM ranking_history
		WHERE product_id = $1 AND collected_at < $2
		ORDER BY collected_at DESC
		LIMIT 1`

	var obs models.Observation
	err := q.QueryRow(ctx, query, productID, ts).Scan(
		&obs.ID, &obs.ProductID, &obs.Ranking, &obs.OriginalPrice,
		&obs.SalePrice, &obs.DiscountRate, &obs.CollectedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query prior observation for %s: %w", productID, err)
	}
	return &obs, nil
}

func (r *rankingRepository) History(ctx context.Context, productID string, since time.Time) ([]*models.Observation, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	query := `
		SELECT id, product_id, ranking, original_price, sale_price, discount_rate, collected_at
		FROM ranking_history
		WHERE product_id = $1 AND collected_at >= $2
		ORDER BY collected_at ASC`

	rows, err := q.Query(ctx, query, productID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", productID, err)
	}
	defer rows.Close()

	var result []*models.Observation
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(
			&obs.ID, &obs.ProductID, &obs.Ranking, &obs.OriginalPrice,
			&obs.SalePrice, &obs.DiscountRate, &obs.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		result = append(result, &obs)
	}
	return result, rows.Err()
}

func (r *rankingRepository) LatestCollectedAt(ctx context.Context) (time.Time, error) {
	return r.boundaryCollectedAt(ctx, "MAX")
}

func (r *rankingRepository) FirstCollectedAt(ctx context.Context) (time.Time, error) {
	return r.boundaryCollectedAt(ctx, "MIN")
}

func (r *rankingRepository) boundaryCollectedAt(ctx context.Context, agg string) (time.Time, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return time.Time{}, apperrors.ErrNoConnection
	}

	var ts *time.Time
	query := fmt.Sprintf(`SELECT %s(collected_at) FROM ranking_history`, agg)
	if err := q.QueryRow(ctx, query).Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("failed to query collection boundary: %w", err)
	}
	if ts == nil {
		return time.Time{}, apperrors.ErrNotFound
	}
	return *ts, nil
}

func (r *rankingRepository) Count(ctx context.Context) (int, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return 0, apperrors.ErrNoConnection
	}

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM ranking_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}
