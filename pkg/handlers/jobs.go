package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// JobHandler serves the job ledger and the whole-database summary.
type JobHandler struct {
	jobs     repositories.JobRepository
	products repositories.ProductRepository
	brands   repositories.BrandRepository
	rankings repositories.RankingRepository
	logger   *zap.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(
	jobs repositories.JobRepository,
	products repositories.ProductRepository,
	brands repositories.BrandRepository,
	rankings repositories.RankingRepository,
	logger *zap.Logger,
) *JobHandler {
	return &JobHandler{jobs: jobs, products: products, brands: brands, rankings: rankings, logger: logger}
}

// RegisterRoutes registers job routes on the given mux.
func (h *JobHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/jobs/history", h.History)
	mux.HandleFunc("GET /api/stats", h.Stats)
}

// History returns job runs, most recent first. Query parameter: limit.
func (h *JobHandler) History(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.Recent(r.Context(), intParam(r, "limit", 20))
	if err != nil {
		RepoError(w, h.logger, err, "job history")
		return
	}
	_ = WriteJSON(w, http.StatusOK, jobs)
}

// DatabaseStats summarizes the stored time series.
type DatabaseStats struct {
	TotalProducts   int    `json:"total_products"`
	TotalBrands     int    `json:"total_brands"`
	TotalDataPoints int    `json:"total_data_points"`
	FirstCollection string `json:"first_collection,omitempty"`
	LastCollection  string `json:"last_collection,omitempty"`
	TotalJobs       int    `json:"total_jobs"`
	SuccessfulJobs  int    `json:"successful_jobs"`
}

// Stats returns whole-database counters and collection boundaries.
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats DatabaseStats

	counters := []struct {
		dst   *int
		count func() (int, error)
	}{
		{&stats.TotalProducts, func() (int, error) { return h.products.Count(ctx) }},
		{&stats.TotalBrands, func() (int, error) { return h.brands.Count(ctx) }},
		{&stats.TotalDataPoints, func() (int, error) { return h.rankings.Count(ctx) }},
		{&stats.TotalJobs, func() (int, error) { return h.jobs.Count(ctx) }},
		{&stats.SuccessfulJobs, func() (int, error) { return h.jobs.CountByStatus(ctx, models.JobStatusSuccess) }},
	}
	for _, c := range counters {
		n, err := c.count()
		if err != nil {
			RepoError(w, h.logger, err, "stats")
			return
		}
		*c.dst = n
	}

	if first, err := h.rankings.FirstCollectedAt(ctx); err == nil {
		stats.FirstCollection = first.Format("2006-01-02 15:04:05")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		h.logger.Error("Failed to read first collection time", zap.Error(err))
	}
	if last, err := h.rankings.LatestCollectedAt(ctx); err == nil {
		stats.LastCollection = last.Format("2006-01-02 15:04:05")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		h.logger.Error("Failed to read last collection time", zap.Error(err))
	}

	_ = WriteJSON(w, http.StatusOK, stats)
}
