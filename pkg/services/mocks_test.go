package services

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// mockTx satisfies pgx.Tx so the ingest service's transaction boundary can
// be observed without a database.
type mockTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return m, nil }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *mockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *mockTx) Conn() *pgx.Conn                                               { return nil }

type mockBeginner struct {
	tx       *mockTx
	beginErr error
}

func (m *mockBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	if m.tx == nil {
		m.tx = &mockTx{}
	}
	return m.tx, nil
}

// mockProductRepo keeps the catalog in a map, mirroring upsert semantics.
type mockProductRepo struct {
	byID      map[string]*models.Product
	upsertErr error
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{byID: make(map[string]*models.Product)}
}

func (m *mockProductRepo) Upsert(ctx context.Context, p *models.ObservedProduct, seenAt time.Time) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	existing, ok := m.byID[p.ProductID]
	if !ok {
		m.byID[p.ProductID] = &models.Product{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			BrandName:   p.BrandName,
			Category:    p.Category,
			CategoryKey: p.CategoryKey,
			ImageURL:    p.ImageURL,
			ProductURL:  p.ProductURL,
			FirstSeen:   seenAt,
			LastSeen:    seenAt,
		}
		return nil
	}
	existing.ProductName = p.ProductName
	existing.BrandName = p.BrandName
	existing.Category = p.Category
	existing.CategoryKey = p.CategoryKey
	existing.ImageURL = p.ImageURL
	existing.ProductURL = p.ProductURL
	existing.LastSeen = seenAt
	return nil
}

func (m *mockProductRepo) Get(ctx context.Context, productID string) (*models.Product, error) {
	p, ok := m.byID[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) CurrentRankings(ctx context.Context, limit int, categoryKey string) ([]*models.RankedProduct, error) {
	return nil, nil
}

func (m *mockProductRepo) Count(ctx context.Context) (int, error) { return len(m.byID), nil }

// mockRankingRepo keeps observations in insert order.
type mockRankingRepo struct {
	observations []*models.Observation
	insertErr    error
	// failAfter fails Insert once this many rows exist. Zero disables.
	failAfter int
}

func newMockRankingRepo() *mockRankingRepo { return &mockRankingRepo{} }

func (m *mockRankingRepo) Insert(ctx context.Context, obs *models.Observation) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.failAfter > 0 && len(m.observations) >= m.failAfter {
		return apperrors.ErrNoConnection
	}
	obs.ID = int64(len(m.observations) + 1)
	m.observations = append(m.observations, obs)
	return nil
}

func (m *mockRankingRepo) LatestBefore(ctx context.Context, productID string, ts time.Time) (*models.Observation, error) {
	var latest *models.Observation
	for _, obs := range m.observations {
		if obs.ProductID != productID || !obs.CollectedAt.Before(ts) {
			continue
		}
		if latest == nil || obs.CollectedAt.After(latest.CollectedAt) {
			latest = obs
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (m *mockRankingRepo) History(ctx context.Context, productID string, since time.Time) ([]*models.Observation, error) {
	var result []*models.Observation
	for _, obs := range m.observations {
		if obs.ProductID == productID && !obs.CollectedAt.Before(since) {
			result = append(result, obs)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CollectedAt.Before(result[j].CollectedAt) })
	return result, nil
}

func (m *mockRankingRepo) LatestCollectedAt(ctx context.Context) (time.Time, error) {
	if len(m.observations) == 0 {
		return time.Time{}, apperrors.ErrNotFound
	}
	latest := m.observations[0].CollectedAt
	for _, obs := range m.observations[1:] {
		if obs.CollectedAt.After(latest) {
			latest = obs.CollectedAt
		}
	}
	return latest, nil
}

func (m *mockRankingRepo) FirstCollectedAt(ctx context.Context) (time.Time, error) {
	if len(m.observations) == 0 {
		return time.Time{}, apperrors.ErrNotFound
	}
	first := m.observations[0].CollectedAt
	for _, obs := range m.observations[1:] {
		if obs.CollectedAt.Before(first) {
			first = obs.CollectedAt
		}
	}
	return first, nil
}

func (m *mockRankingRepo) Count(ctx context.Context) (int, error) { return len(m.observations), nil }

// at returns the observations carrying exactly this timestamp.
func (m *mockRankingRepo) at(ts time.Time) []*models.Observation {
	var result []*models.Observation
	for _, obs := range m.observations {
		if obs.CollectedAt.Equal(ts) {
			result = append(result, obs)
		}
	}
	return result
}

// mockChangeRepo collects inserted facts.
type mockChangeRepo struct {
	rankChanges  []*models.RankChange
	priceChanges []*models.PriceChange
	insertErr    error
}

func newMockChangeRepo() *mockChangeRepo { return &mockChangeRepo{} }

func (m *mockChangeRepo) InsertRankChange(ctx context.Context, c *models.RankChange) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	c.ID = int64(len(m.rankChanges) + 1)
	m.rankChanges = append(m.rankChanges, c)
	return nil
}

func (m *mockChangeRepo) InsertPriceChange(ctx context.Context, c *models.PriceChange) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	c.ID = int64(len(m.priceChanges) + 1)
	m.priceChanges = append(m.priceChanges, c)
	return nil
}

func (m *mockChangeRepo) RankMovers(ctx context.Context, since time.Time, changeType string, limit int) ([]*models.RankChange, error) {
	return m.rankChanges, nil
}

func (m *mockChangeRepo) PriceMovers(ctx context.Context, since time.Time, direction repositories.PriceDirection, limit int) ([]*models.PriceChange, error) {
	return m.priceChanges, nil
}

// mockBrandRepo mirrors the aggregation SQL in memory so per-batch scoping
// can be asserted.
type mockBrandRepo struct {
	brands   map[string]time.Time
	stats    []*models.BrandStat
	rankings *mockRankingRepo
	products *mockProductRepo

	computeErr error
	insertErr  error
}

func newMockBrandRepo(rankings *mockRankingRepo, products *mockProductRepo) *mockBrandRepo {
	return &mockBrandRepo{
		brands:   make(map[string]time.Time),
		rankings: rankings,
		products: products,
	}
}

func (m *mockBrandRepo) Upsert(ctx context.Context, brandName string, seenAt time.Time) error {
	m.brands[brandName] = seenAt
	return nil
}

func (m *mockBrandRepo) List(ctx context.Context) ([]string, error) {
	var names []string
	for name := range m.brands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockBrandRepo) Count(ctx context.Context) (int, error) { return len(m.brands), nil }

func (m *mockBrandRepo) ComputeStats(ctx context.Context, collectedAt time.Time) ([]*models.BrandStat, error) {
	if m.computeErr != nil {
		return nil, m.computeErr
	}

	grouped := make(map[string][]*models.Observation)
	for _, obs := range m.rankings.at(collectedAt) {
		product, ok := m.products.byID[obs.ProductID]
		if !ok {
			continue
		}
		brand := strings.TrimSpace(product.BrandName)
		if brand == "" || brand == models.BrandPlaceholder {
			continue
		}
		grouped[brand] = append(grouped[brand], obs)
	}

	var result []*models.BrandStat
	for brand, group := range grouped {
		stat := &models.BrandStat{
			BrandName:    brand,
			ProductCount: len(group),
			CollectedAt:  collectedAt,
		}
		var rankSum float64
		var priceSum, priced int64
		var discountSum float64
		var discounted int
		for _, obs := range group {
			rankSum += float64(obs.Ranking)
			if obs.SalePrice != nil {
				priceSum += *obs.SalePrice
				priced++
				if stat.MinPrice == 0 || *obs.SalePrice < stat.MinPrice {
					stat.MinPrice = *obs.SalePrice
				}
				if *obs.SalePrice > stat.MaxPrice {
					stat.MaxPrice = *obs.SalePrice
				}
			}
			if obs.DiscountRate != nil {
				discountSum += *obs.DiscountRate
				discounted++
			}
		}
		stat.AvgRanking = rankSum / float64(len(group))
		if priced > 0 {
			stat.AvgPrice = float64(priceSum) / float64(priced)
		}
		if discounted > 0 {
			avg := discountSum / float64(discounted)
			stat.AvgDiscountRate = &avg
		}
		result = append(result, stat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BrandName < result[j].BrandName })
	return result, nil
}

func (m *mockBrandRepo) InsertStats(ctx context.Context, stats []*models.BrandStat) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.stats = append(m.stats, stats...)
	return nil
}

func (m *mockBrandRepo) Trend(ctx context.Context, brandName string, since time.Time) ([]*models.BrandStat, error) {
	var result []*models.BrandStat
	for _, stat := range m.stats {
		if stat.BrandName == brandName && !stat.CollectedAt.Before(since) {
			result = append(result, stat)
		}
	}
	return result, nil
}

func (m *mockBrandRepo) Summary(ctx context.Context, since time.Time, limit int) ([]*repositories.BrandSummary, error) {
	return nil, nil
}

// mockJobRepo collects ledger entries.
type mockJobRepo struct {
	jobs      []*models.ScrapeJob
	createErr error
}

func newMockJobRepo() *mockJobRepo { return &mockJobRepo{} }

func (m *mockJobRepo) Create(ctx context.Context, job *models.ScrapeJob) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockJobRepo) Recent(ctx context.Context, limit int) ([]*models.ScrapeJob, error) {
	return m.jobs, nil
}

func (m *mockJobRepo) Count(ctx context.Context) (int, error) { return len(m.jobs), nil }

func (m *mockJobRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	count := 0
	for _, job := range m.jobs {
		if job.Status == status {
			count++
		}
	}
	return count, nil
}

// mockScraper returns a canned batch or error.
type mockScraper struct {
	batch []*models.ObservedProduct
	err   error
	// block, when non-nil, stalls Scrape until the channel closes.
	block chan struct{}
	calls atomic.Int32
}

func (m *mockScraper) Scrape(ctx context.Context) ([]*models.ObservedProduct, error) {
	m.calls.Add(1)
	if m.block != nil {
		<-m.block
	}
	return m.batch, m.err
}

var (
	_ repositories.ProductRepository = (*mockProductRepo)(nil)
	_ repositories.RankingRepository = (*mockRankingRepo)(nil)
	_ repositories.ChangeRepository  = (*mockChangeRepo)(nil)
	_ repositories.BrandRepository   = (*mockBrandRepo)(nil)
	_ repositories.JobRepository     = (*mockJobRepo)(nil)
	_ Scraper                        = (*mockScraper)(nil)
)

// helpers

func int64p(v int64) *int64       { return &v }
func float64p(v float64) *float64 { return &v }

func observed(id string, rank int, brand string, sale int64) *models.ObservedProduct {
	return &models.ObservedProduct{
		ProductID:   id,
		ProductName: "Product " + id,
		BrandName:   brand,
		Category:    "Outerwear",
		CategoryKey: "outer",
		ImageURL:    "https://img.example.com/" + id + ".jpg",
		ProductURL:  "https://example.com/product/" + id,
		Rank:        rank,
		SalePrice:   int64p(sale),
	}
}
