package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// ChangeDetector compares a freshly persisted observation against the most
// recent strictly-earlier one and records rank/price change facts.
type ChangeDetector interface {
	// Detect is invoked once per persisted observation, after its history
	// row exists. Either returned fact may be nil: a first sighting yields
	// none, and rank and price movements are independent of each other.
	Detect(ctx context.Context, obs *models.Observation) (*models.RankChange, *models.PriceChange, error)
}

type changeDetector struct {
	rankings repositories.RankingRepository
	changes  repositories.ChangeRepository
	logger   *zap.Logger
}

// NewChangeDetector creates a ChangeDetector.
func NewChangeDetector(rankings repositories.RankingRepository, changes repositories.ChangeRepository, logger *zap.Logger) ChangeDetector {
	return &changeDetector{
		rankings: rankings,
		changes:  changes,
		logger:   logger.Named("change-detector"),
	}
}

var _ ChangeDetector = (*changeDetector)(nil)

func (d *changeDetector) Detect(ctx context.Context, obs *models.Observation) (*models.RankChange, *models.PriceChange, error) {
	prev, err := d.rankings.LatestBefore(ctx, obs.ProductID, obs.CollectedAt)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// First sighting: suppress fact generation.
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("lookup prior observation: %w", err)
	}

	rankFact, err := d.detectRank(ctx, prev, obs)
	if err != nil {
		return nil, nil, err
	}

	priceFact, err := d.detectPrice(ctx, prev, obs)
	if err != nil {
		return rankFact, nil, err
	}

	return rankFact, priceFact, nil
}

func (d *changeDetector) detectRank(ctx context.Context, prev, obs *models.Observation) (*models.RankChange, error) {
	if prev.Ranking == obs.Ranking {
		return nil, nil
	}

	// Positive amount means the product moved to a better (lower) rank.
	amount := prev.Ranking - obs.Ranking
	changeType := models.RankChangeDown
	if amount > 0 {
		changeType = models.RankChangeUp
	}

	fact := &models.RankChange{
		ProductID:       obs.ProductID,
		PreviousRanking: prev.Ranking,
		CurrentRanking:  obs.Ranking,
		ChangeAmount:    amount,
		ChangeType:      changeType,
		ChangedAt:       obs.CollectedAt,
	}
	if err := d.changes.InsertRankChange(ctx, fact); err != nil {
		return nil, fmt.Errorf("record rank change: %w", err)
	}

	d.logger.Debug("Rank change detected",
		zap.String("product_id", obs.ProductID),
		zap.Int("previous", prev.Ranking),
		zap.Int("current", obs.Ranking),
		zap.String("type", changeType))
	return fact, nil
}

func (d *changeDetector) detectPrice(ctx context.Context, prev, obs *models.Observation) (*models.PriceChange, error) {
	// Both sides must be known, non-zero prices. A missing or zero value on
	// either end marks an unpriced listing, not a real movement.
	if prev.SalePrice == nil || *prev.SalePrice == 0 || obs.SalePrice == nil || *obs.SalePrice == 0 {
		return nil, nil
	}
	if *prev.SalePrice == *obs.SalePrice {
		return nil, nil
	}

	amount := *obs.SalePrice - *prev.SalePrice
	pct := float64(amount) / float64(*prev.SalePrice) * 100

	fact := &models.PriceChange{
		ProductID:        obs.ProductID,
		PreviousPrice:    *prev.SalePrice,
		CurrentPrice:     *obs.SalePrice,
		ChangeAmount:     amount,
		ChangePercentage: pct,
		PreviousDiscount: prev.DiscountRate,
		CurrentDiscount:  obs.DiscountRate,
		ChangedAt:        obs.CollectedAt,
	}
	if err := d.changes.InsertPriceChange(ctx, fact); err != nil {
		return nil, fmt.Errorf("record price change: %w", err)
	}

	d.logger.Debug("Price change detected",
		zap.String("product_id", obs.ProductID),
		zap.Int64("previous", *prev.SalePrice),
		zap.Int64("current", *obs.SalePrice),
		zap.Float64("percentage", pct))
	return fact, nil
}
