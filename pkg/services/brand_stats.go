package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// BrandStatsService computes and stores per-brand rollups for one batch.
type BrandStatsService interface {
	// Aggregate groups the observations carrying exactly collectedAt by
	// brand and appends one stats row per brand. It must be invoked at most
	// once per collection timestamp, after the batch's observations exist.
	Aggregate(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error)
}

type brandStatsService struct {
	brands repositories.BrandRepository
	logger *zap.Logger
}

// NewBrandStatsService creates a BrandStatsService.
func NewBrandStatsService(brands repositories.BrandRepository, logger *zap.Logger) BrandStatsService {
	return &brandStatsService{
		brands: brands,
		logger: logger.Named("brand-stats"),
	}
}

var _ BrandStatsService = (*brandStatsService)(nil)

func (s *brandStatsService) Aggregate(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error) {
	stats, err := s.brands.ComputeStats(ctx, collectedAt)
	if err != nil {
		return nil, fmt.Errorf("compute brand stats: %w", err)
	}
	if len(stats) == 0 {
		s.logger.Warn("No brands to aggregate for batch", zap.Time("collected_at", collectedAt))
		return nil, nil
	}

	if err := s.brands.InsertStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("store brand stats: %w", err)
	}

	s.logger.Debug("Brand stats aggregated",
		zap.Int("brands", len(stats)),
		zap.Time("collected_at", collectedAt))
	return stats, nil
}
