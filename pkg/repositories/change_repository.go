package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// PriceDirection filters price movement queries.
type PriceDirection string

const (
	PriceIncreased PriceDirection = "increased"
	PriceDecreased PriceDirection = "decreased"
)

// ChangeRepository provides data access for derived change facts. Facts are
// append-only; there are no update or delete operations.
type ChangeRepository interface {
	InsertRankChange(ctx context.Context, c *models.RankChange) error
	InsertPriceChange(ctx context.Context, c *models.PriceChange) error
	// RankMovers returns rank changes since the given time, ordered by
	// absolute change amount descending. changeType filters by direction
	// when non-empty ("up" or "down").
	RankMovers(ctx context.Context, since time.Time, changeType string, limit int) ([]*models.RankChange, error)
	// PriceMovers returns price changes since the given time for one
	// direction: increases ordered by percentage descending, decreases by
	// percentage ascending (largest cut first).
	PriceMovers(ctx context.Context, since time.Time, direction PriceDirection, limit int) ([]*models.PriceChange, error)
}

type changeRepository struct{}

func NewChangeRepository() ChangeRepository {
	return &changeRepository{}
}

var _ ChangeRepository = (*changeRepository)(nil)

func (r *changeRepository) InsertRankChange(ctx context.Context, c *models.RankChange) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO ranking_changes (
			product_id, previous_ranking, current_ranking, change_amount, change_type, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := q.QueryRow(ctx, query,
		c.ProductID, c.PreviousRanking, c.CurrentRanking, c.ChangeAmount, c.ChangeType, c.ChangedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert rank change for %s: %w", c.ProductID, err)
	}
	return nil
}

func (r *changeRepository) InsertPriceChange(ctx context.Context, c *models.PriceChange) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO price_changes (
			product_id, previous_sale_price, current_sale_price,
			price_change_amount, price_change_percentage,
			previous_discount_rate, current_discount_rate, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := q.QueryRow(ctx, query,
		c.ProductID, c.PreviousPrice, c.CurrentPrice,
		c.ChangeAmount, c.ChangePercentage,
		c.PreviousDiscount, c.CurrentDiscount, c.ChangedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert price change for %s: %w", c.ProductID, err)
	}
	return nil
}

func (r *changeRepository) RankMovers(ctx context.Context, since time.Time, changeType string, limit int) ([]*models.RankChange, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT rc.id, rc.product_id, rc.previous_ranking, rc.current_ranking,
		       rc.change_amount, rc.change_type, rc.changed_at,
		       p.product_name, p.brand_name
		FROM ranking_changes rc
		JOIN products p ON rc.product_id = p.product_id
		WHERE rc.changed_at >= $1`
	args := []any{since, limit}
	if changeType != "" {
		query += ` AND rc.change_type = $3`
		args = append(args, changeType)
	}
	query += `
		ORDER BY ABS(rc.change_amount) DESC, rc.changed_at DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rank movers: %w", err)
	}
	defer rows.Close()

	var result []*models.RankChange
	for rows.Next() {
		var c models.RankChange
		if err := rows.Scan(
			&c.ID, &c.ProductID, &c.PreviousRanking, &c.CurrentRanking,
			&c.ChangeAmount, &c.ChangeType, &c.ChangedAt,
			&c.ProductName, &c.BrandName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rank change: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (r *changeRepository) PriceMovers(ctx context.Context, since time.Time, direction PriceDirection, limit int) ([]*models.PriceChange, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	cmp, order := ">", "DESC"
	if direction == PriceDecreased {
		cmp, order = "<", "ASC"
	}

	query := fmt.Sprintf(`
		SELECT pc.id, pc.product_id, pc.previous_sale_price, pc.current_sale_price,
		       pc.price_change_amount, pc.price_change_percentage,
		       pc.previous_discount_rate, pc.current_discount_rate, pc.changed_at,
		       p.product_name, p.brand_name
		FROM price_changes pc
		JOIN products p ON pc.product_id = p.product_id
		WHERE pc.changed_at >= $1 AND pc.price_change_amount %s 0
		ORDER BY pc.price_change_percentage %s
		LIMIT $2`, cmp, order)

	rows, err := q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price movers: %w", err)
	}
	defer rows.Close()

	var result []*models.PriceChange
	for rows.Next() {
		var c models.PriceChange
		if err := rows.Scan(
			&c.ID, &c.ProductID, &c.PreviousPrice, &c.CurrentPrice,
			&c.ChangeAmount, &c.ChangePercentage,
			&c.PreviousDiscount, &c.CurrentDiscount, &c.ChangedAt,
			&c.ProductName, &c.BrandName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price change: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}
