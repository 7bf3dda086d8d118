package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// BrandHandler serves the brand registry, windowed summaries and per-brand
// aggregate trends.
type BrandHandler struct {
	brands repositories.BrandRepository
	logger *zap.Logger
}

// NewBrandHandler creates a BrandHandler.
func NewBrandHandler(brands repositories.BrandRepository, logger *zap.Logger) *BrandHandler {
	return &BrandHandler{brands: brands, logger: logger}
}

// RegisterRoutes registers brand routes on the given mux.
func (h *BrandHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/brands/list", h.List)
	mux.HandleFunc("GET /api/brands/stats", h.Stats)
	mux.HandleFunc("GET /api/trends/brand/{name}", h.Trend)
}

// List returns every known brand name.
func (h *BrandHandler) List(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context())
	if err != nil {
		RepoError(w, h.logger, err, "brands")
		return
	}
	if brands == nil {
		brands = []string{}
	}
	_ = WriteJSON(w, http.StatusOK, brands)
}

// Stats returns per-brand averages over a window, most represented brands
// first. Query parameters: hours (default 24), limit.
func (h *BrandHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.brands.Summary(r.Context(), sinceHours(r, 24), intParam(r, "limit", 50))
	if err != nil {
		RepoError(w, h.logger, err, "brand stats")
		return
	}
	_ = WriteJSON(w, http.StatusOK, summary)
}

// Trend returns one brand's aggregate rows across a window, ascending.
// Query parameter: hours (default 168, one week).
func (h *BrandHandler) Trend(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	trend, err := h.brands.Trend(r.Context(), name, sinceHours(r, 168))
	if err != nil {
		RepoError(w, h.logger, err, "trend for brand: "+name)
		return
	}
	_ = WriteJSON(w, http.StatusOK, trend)
}
