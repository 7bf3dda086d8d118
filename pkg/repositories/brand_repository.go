package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// BrandSummary is a windowed average over stored brand aggregates.
type BrandSummary struct {
	BrandName       string   `json:"brand_name"`
	AvgProductCount float64  `json:"avg_product_count"`
	AvgRanking      float64  `json:"avg_ranking"`
	AvgPrice        float64  `json:"avg_price"`
	AvgDiscountRate *float64 `json:"avg_discount_rate"`
}

// BrandRepository provides data access for the brand registry and per-batch
// brand aggregates.
type BrandRepository interface {
	Upsert(ctx context.Context, brandName string, seenAt time.Time) error
	List(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	// ComputeStats aggregates the observations carrying exactly this
	// collection timestamp, grouped by brand. Placeholder brands are
	// excluded; a brand with no priced products still yields a row with
	// zero price statistics.
	ComputeStats(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error)
	InsertStats(ctx context.Context, stats []*models.BrandStat) error
	// Trend returns stored aggregates for one brand since the given time,
	// ascending.
	Trend(ctx context.Context, brandName string, since time.Time) ([]*models.BrandStat, error)
	// Summary averages stored aggregates per brand over a window, most
	// represented brands first.
	Summary(ctx context.Context, since time.Time, limit int) ([]*BrandSummary, error)
}

type brandRepository struct{}

func NewBrandRepository() BrandRepository {
	return &brandRepository{}
}

var _ BrandRepository = (*brandRepository)(nil)

func (r *brandRepository) Upsert(ctx context.Context, brandName string, seenAt time.Time) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO brands (brand_name, first_seen, last_updated)
		VALUES ($1, $2, $2)
		ON CONFLICT (brand_name) DO UPDATE SET last_updated = EXCLUDED.last_updated`

	if _, err := q.Exec(ctx, query, brandName, seenAt); err != nil {
		return fmt.Errorf("failed to upsert brand %s: %w", brandName, err)
	}
	return nil
}

func (r *brandRepository) List(ctx context.Context) ([]string, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	rows, err := q.Query(ctx, `SELECT brand_name FROM brands ORDER BY brand_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		result = append(result, name)
	}
	return result, rows.Err()
}

func (r *brandRepository) Count(ctx context.Context) (int, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return 0, apperrors.ErrNoConnection
	}

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM brands`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count brands: %w", err)
	}
	return count, nil
}

func (r *brandRepository) ComputeStats(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	query := `
		SELECT p.brand_name,
		       COUNT(*),
		       AVG(rh.ranking),
		       COALESCE(AVG(rh.sale_price), 0),
		       COALESCE(MIN(rh.sale_price), 0),
		       COALESCE(MAX(rh.sale_price), 0),
		       AVG(rh.discount_rate)
		FROM ranking_history rh
		JOIN products p ON rh.product_id = p.product_id
		WHERE rh.collected_at = $1
		  AND p.brand_name IS NOT NULL
		  AND p.brand_name <> ''
		  AND p.brand_name <> $2
		GROUP BY p.brand_name`

	rows, err := q.Query(ctx, query, collectedAt, models.BrandPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("failed to compute brand stats: %w", err)
	}
	defer rows.Close()

	var result []*models.BrandStat
	for rows.Next() {
		stat := &models.BrandStat{CollectedAt: collectedAt}
		if err := rows.Scan(
			&stat.BrandName, &stat.ProductCount, &stat.AvgRanking,
			&stat.AvgPrice, &stat.MinPrice, &stat.MaxPrice, &stat.AvgDiscountRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan brand stat: %w", err)
		}
		result = append(result, stat)
	}
	return result, rows.Err()
}

func (r *brandRepository) InsertStats(ctx context.Context, stats []*models.BrandStat) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO brand_stats_history (
			brand_name, product_count, avg_ranking, avg_price,
			min_price, max_price, avg_discount_rate, collected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for _, stat := range stats {
		err := q.QueryRow(ctx, query,
			stat.BrandName, stat.ProductCount, stat.AvgRanking, stat.AvgPrice,
			stat.MinPrice, stat.MaxPrice, stat.AvgDiscountRate, stat.CollectedAt,
		).Scan(&stat.ID)
		if err != nil {
			return fmt.Errorf("failed to insert brand stat for %s: %w", stat.BrandName, err)
		}
	}
	return nil
}

func (r *brandRepository) Trend(ctx context.Context, brandName string, since time.Time) ([]*models.BrandStat, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	query := `
		SELECT id, brand_name, product_count, avg_ranking, avg_price,
		       min_price, max_price, avg_discount_rate, collected_at
		FROM brand_stats_history
		WHERE brand_name = $1 AND collected_at >= $2
		ORDER BY collected_at ASC`

	rows, err := q.Query(ctx, query, brandName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand trend for %s: %w", brandName, err)
	}
	defer rows.Close()

	var result []*models.BrandStat
	for rows.Next() {
		var stat models.BrandStat
		if err := rows.Scan(
			&stat.ID, &stat.BrandName, &stat.ProductCount, &stat.AvgRanking,
			&stat.AvgPrice, &stat.MinPrice, &stat.MaxPrice, &stat.AvgDiscountRate,
			&stat.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan brand stat: %w", err)
		}
		result = append(result, &stat)
	}
	return result, rows.Err()
}

func (r *brandRepository) Summary(ctx context.Context, since time.Time, limit int) ([]*BrandSummary, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT brand_name,
		       AVG(product_count),
		       AVG(avg_ranking),
		       AVG(avg_price),
		       AVG(avg_discount_rate)
		FROM brand_stats_history
		WHERE collected_at >= $1
		GROUP BY brand_name
		ORDER BY AVG(product_count) DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand summary: %w", err)
	}
	defer rows.Close()

	var result []*BrandSummary
	for rows.Next() {
		var s BrandSummary
		if err := rows.Scan(
			&s.BrandName, &s.AvgProductCount, &s.AvgRanking, &s.AvgPrice, &s.AvgDiscountRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan brand summary: %w", err)
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}
