package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/database"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// TxBeginner opens storage transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// IngestService persists one scraped batch as a single atomic unit:
// product upserts, observation rows, derived change facts and the brand
// rollup all commit together or not at all.
type IngestService interface {
	Ingest(ctx context.Context, batch []*models.ObservedProduct, collectedAt time.Time) (*models.IngestResult, error)
}

type ingestService struct {
	db       TxBeginner
	products repositories.ProductRepository
	rankings repositories.RankingRepository
	brands   repositories.BrandRepository
	detector ChangeDetector
	stats    BrandStatsService
	logger   *zap.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(
	db TxBeginner,
	products repositories.ProductRepository,
	rankings repositories.RankingRepository,
	brands repositories.BrandRepository,
	detector ChangeDetector,
	stats BrandStatsService,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		db:       db,
		products: products,
		rankings: rankings,
		brands:   brands,
		detector: detector,
		stats:    stats,
		logger:   logger.Named("ingest"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) Ingest(ctx context.Context, batch []*models.ObservedProduct, collectedAt time.Time) (*models.IngestResult, error) {
	if len(batch) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}

	result := &models.IngestResult{CollectedAt: collectedAt}

	valid := s.prepare(batch, result)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: all %d records failed validation", apperrors.ErrInvalidProduct, len(batch))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := database.SetQuerier(ctx, tx)

	for _, p := range valid {
		if err := s.persistOne(txCtx, p, collectedAt, result); err != nil {
			// A storage-level failure poisons the transaction; nothing
			// from this batch may remain visible.
			return nil, fmt.Errorf("persist product %s: %w", p.ProductID, err)
		}
	}

	stats, err := s.stats.Aggregate(txCtx, collectedAt)
	if err != nil {
		return nil, fmt.Errorf("aggregate batch: %w", err)
	}
	result.BrandStats = len(stats)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	s.logger.Info("Batch ingested",
		zap.Time("collected_at", collectedAt),
		zap.Int("persisted", result.Persisted),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("rank_changes", result.RankChanges),
		zap.Int("price_moves", result.PriceMoves),
		zap.Int("brand_stats", result.BrandStats))
	return result, nil
}

// prepare de-duplicates the batch by product key (last occurrence wins) and
// drops records that fail validation, noting each skip on the result.
func (s *ingestService) prepare(batch []*models.ObservedProduct, result *models.IngestResult) []*models.ObservedProduct {
	index := make(map[string]int, len(batch))
	var unique []*models.ObservedProduct
	for _, p := range batch {
		if pos, seen := index[p.ProductID]; seen && p.ProductID != "" {
			unique[pos] = p
			continue
		}
		index[p.ProductID] = len(unique)
		unique = append(unique, p)
	}

	valid := unique[:0]
	for _, p := range unique {
		if err := p.Validate(); err != nil {
			s.logger.Warn("Skipping invalid product",
				zap.String("product_id", p.ProductID),
				zap.Error(err))
			result.Skipped = append(result.Skipped, models.SkippedProduct{
				ProductID: p.ProductID,
				Reason:    err.Error(),
			})
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// persistOne runs the per-product pipeline inside the batch transaction:
// metadata upsert, then the observation row, then change detection against
// the prior observation.
func (s *ingestService) persistOne(ctx context.Context, p *models.ObservedProduct, collectedAt time.Time, result *models.IngestResult) error {
	if err := s.products.Upsert(ctx, p, collectedAt); err != nil {
		return err
	}

	obs := &models.Observation{
		ProductID:     p.ProductID,
		Ranking:       p.Rank,
		OriginalPrice: p.OriginalPrice,
		SalePrice:     p.SalePrice,
		DiscountRate:  p.DiscountRate,
		CollectedAt:   collectedAt,
	}
	if err := s.rankings.Insert(ctx, obs); err != nil {
		return err
	}

	if brand := strings.TrimSpace(p.BrandName); brand != "" && brand != models.BrandPlaceholder {
		if err := s.brands.Upsert(ctx, brand, collectedAt); err != nil {
			return err
		}
	}

	rankFact, priceFact, err := s.detector.Detect(ctx, obs)
	if err != nil {
		return err
	}
	if rankFact != nil {
		result.RankChanges++
	}
	if priceFact != nil {
		result.PriceMoves++
	}

	result.Persisted++
	return nil
}
