package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
)

// ProductRepository provides data access for the product catalog.
type ProductRepository interface {
	// Upsert inserts the product or overwrites its mutable display fields,
	// bumping last_seen. Keyed by product_id.
	Upsert(ctx context.Context, p *models.ObservedProduct, seenAt time.Time) error
	Get(ctx context.Context, productID string) (*models.Product, error)
	// CurrentRankings returns the most recent observation per product joined
	// with metadata, ordered by ranking ascending. categoryKey filters when
	// non-empty.
	CurrentRankings(ctx context.Context, limit int, categoryKey string) ([]*models.RankedProduct, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct{}

func NewProductRepository() ProductRepository {
	return &productRepository{}
}

var _ ProductRepository = (*productRepository)(nil)

func (r *productRepository) Upsert(ctx context.Context, p *models.ObservedProduct, seenAt time.Time) error {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return apperrors.ErrNoConnection
	}

	query := `
		INSERT INTO products (
			product_id, product_name, brand_name, category, category_key,
			image_url, product_url, first_seen, last_seen, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $8, $8)
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			brand_name   = EXCLUDED.brand_name,
			category     = EXCLUDED.category,
			category_key = EXCLUDED.category_key,
			image_url    = EXCLUDED.image_url,
			product_url  = EXCLUDED.product_url,
			last_seen    = EXCLUDED.last_seen,
			updated_at   = EXCLUDED.updated_at`

	_, err := q.Exec(ctx, query,
		p.ProductID, p.ProductName, p.BrandName, p.Category, p.CategoryKey,
		p.ImageURL, p.ProductURL, seenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ProductID, err)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, productID string) (*models.Product, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	query := `
		SELECT product_id, product_name, brand_name, category, category_key,
		       image_url, product_url, first_seen, last_seen, created_at, updated_at
		FROM products
		WHERE product_id = $1`

	var p models.Product
	err := q.QueryRow(ctx, query, productID).Scan(
		&p.ProductID, &p.ProductName, &p.BrandName, &p.Category, &p.CategoryKey,
		&p.ImageURL, &p.ProductURL, &p.FirstSeen, &p.LastSeen, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	return &p, nil
}

func (r *productRepository) CurrentRankings(ctx context.Context, limit int, categoryKey string) ([]*models.RankedProduct, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return nil, apperrors.ErrNoConnection
	}

	if limit <= 0 || limit > 500 {
		limit = 200
	}

	query := `
		SELECT rh.ranking, p.product_id, p.product_name, p.brand_name, p.category,
		       rh.original_price, rh.sale_price, rh.discount_rate,
		       p.image_url, p.product_url, rh.collected_at
		FROM ranking_history rh
		JOIN products p ON rh.product_id = p.product_id
		WHERE rh.collected_at = (SELECT MAX(collected_at) FROM ranking_history)`
	args := []any{limit}
	if categoryKey != "" {
		query += ` AND p.category_key = $2`
		args = append(args, categoryKey)
	}
	query += `
		ORDER BY rh.ranking
		LIMIT $1`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query current rankings: %w", err)
	}
	defer rows.Close()

	var result []*models.RankedProduct
	for rows.Next() {
		var rp models.RankedProduct
		if err := rows.Scan(
			&rp.Ranking, &rp.ProductID, &rp.ProductName, &rp.BrandName, &rp.Category,
			&rp.OriginalPrice, &rp.SalePrice, &rp.DiscountRate,
			&rp.ImageURL, &rp.ProductURL, &rp.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ranked product: %w", err)
		}
		result = append(result, &rp)
	}
	return result, rows.Err()
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	q, ok := database.GetQuerier(ctx)
	if !ok {
		return 0, apperrors.ErrNoConnection
	}

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
