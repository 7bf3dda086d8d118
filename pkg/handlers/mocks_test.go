package handlers

import (
	"context"
	"time"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// Canned-response repository mocks for handler tests. Each field is the
// value its method returns; err short-circuits everything.

type mockProductRepo struct {
	products map[string]*models.Product
	rankings []*models.RankedProduct
	count    int
	err      error
}

func (m *mockProductRepo) Upsert(ctx context.Context, p *models.ObservedProduct, seenAt time.Time) error {
	return m.err
}

func (m *mockProductRepo) Get(ctx context.Context, productID string) (*models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) CurrentRankings(ctx context.Context, limit int, categoryKey string) ([]*models.RankedProduct, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.rankings) {
		return m.rankings[:limit], nil
	}
	return m.rankings, nil
}

func (m *mockProductRepo) Count(ctx context.Context) (int, error) { return m.count, m.err }

type mockRankingRepo struct {
	history []*models.Observation
	first   time.Time
	latest  time.Time
	count   int
	err     error
}

func (m *mockRankingRepo) Insert(ctx context.Context, obs *models.Observation) error { return m.err }

func (m *mockRankingRepo) LatestBefore(ctx context.Context, productID string, ts time.Time) (*models.Observation, error) {
	return nil, apperrors.ErrNotFound
}

func (m *mockRankingRepo) History(ctx context.Context, productID string, since time.Time) ([]*models.Observation, error) {
	return m.history, m.err
}

func (m *mockRankingRepo) LatestCollectedAt(ctx context.Context) (time.Time, error) {
	if m.latest.IsZero() {
		return time.Time{}, apperrors.ErrNotFound
	}
	return m.latest, m.err
}

func (m *mockRankingRepo) FirstCollectedAt(ctx context.Context) (time.Time, error) {
	if m.first.IsZero() {
		return time.Time{}, apperrors.ErrNotFound
	}
	return m.first, m.err
}

func (m *mockRankingRepo) Count(ctx context.Context) (int, error) { return m.count, m.err }

type mockChangeRepo struct {
	rankMovers []*models.RankChange
	increased  []*models.PriceChange
	decreased  []*models.PriceChange
	err        error

	lastDirection string
}

func (m *mockChangeRepo) InsertRankChange(ctx context.Context, c *models.RankChange) error {
	return m.err
}

func (m *mockChangeRepo) InsertPriceChange(ctx context.Context, c *models.PriceChange) error {
	return m.err
}

func (m *mockChangeRepo) RankMovers(ctx context.Context, since time.Time, changeType string, limit int) ([]*models.RankChange, error) {
	m.lastDirection = changeType
	return m.rankMovers, m.err
}

func (m *mockChangeRepo) PriceMovers(ctx context.Context, since time.Time, direction repositories.PriceDirection, limit int) ([]*models.PriceChange, error) {
	if m.err != nil {
		return nil, m.err
	}
	if direction == repositories.PriceIncreased {
		return m.increased, nil
	}
	return m.decreased, nil
}

type mockBrandRepo struct {
	names   []string
	stats   []*models.BrandStat
	summary []*repositories.BrandSummary
	count   int
	err     error
}

func (m *mockBrandRepo) Upsert(ctx context.Context, brandName string, seenAt time.Time) error {
	return m.err
}

func (m *mockBrandRepo) List(ctx context.Context) ([]string, error) { return m.names, m.err }

func (m *mockBrandRepo) Count(ctx context.Context) (int, error) { return m.count, m.err }

func (m *mockBrandRepo) ComputeStats(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error) {
	return m.stats, m.err
}

func (m *mockBrandRepo) InsertStats(ctx context.Context, stats []*models.BrandStat) error {
	return m.err
}

func (m *mockBrandRepo) Trend(ctx context.Context, brandName string, since time.Time) ([]*models.BrandStat, error) {
	return m.stats, m.err
}

func (m *mockBrandRepo) Summary(ctx context.Context, since time.Time, limit int) ([]*repositories.BrandSummary, error) {
	return m.summary, m.err
}

type mockJobRepo struct {
	jobs         []*models.ScrapeJob
	count        int
	successCount int
	err          error
}

func (m *mockJobRepo) Create(ctx context.Context, job *models.ScrapeJob) error { return m.err }

func (m *mockJobRepo) Recent(ctx context.Context, limit int) ([]*models.ScrapeJob, error) {
	return m.jobs, m.err
}

func (m *mockJobRepo) Count(ctx context.Context) (int, error) { return m.count, m.err }

func (m *mockJobRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	return m.successCount, m.err
}

func int64p(v int64) *int64 { return &v }

var (
	_ repositories.ProductRepository = (*mockProductRepo)(nil)
	_ repositories.RankingRepository = (*mockRankingRepo)(nil)
	_ repositories.ChangeRepository  = (*mockChangeRepo)(nil)
	_ repositories.BrandRepository   = (*mockBrandRepo)(nil)
	_ repositories.JobRepository     = (*mockJobRepo)(nil)
)
