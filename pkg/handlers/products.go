package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// ProductHandler serves current-state and per-product history queries.
type ProductHandler struct {
	products repositories.ProductRepository
	rankings repositories.RankingRepository
	logger   *zap.Logger
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(products repositories.ProductRepository, rankings repositories.RankingRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, rankings: rankings, logger: logger}
}

// RegisterRoutes registers product routes on the given mux.
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products/current", h.Current)
	mux.HandleFunc("GET /api/products/{id}/history", h.History)
	mux.HandleFunc("GET /api/trends/product/{id}", h.Trend)
}

// Current returns the most recent committed batch, ordered by ranking.
// Optional query parameters: limit, category.
func (h *ProductHandler) Current(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 200)
	category := r.URL.Query().Get("category")

	rankings, err := h.products.CurrentRankings(r.Context(), limit, category)
	if err != nil {
		RepoError(w, h.logger, err, "current rankings")
		return
	}
	_ = WriteJSON(w, http.StatusOK, rankings)
}

// History returns one product's observations within a window, ascending.
// Optional query parameter: days (default 7).
func (h *ProductHandler) History(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	if _, err := h.products.Get(r.Context(), productID); err != nil {
		RepoError(w, h.logger, err, "product: "+productID)
		return
	}

	history, err := h.rankings.History(r.Context(), productID, sinceDays(r, 7))
	if err != nil {
		RepoError(w, h.logger, err, "history for product: "+productID)
		return
	}
	_ = WriteJSON(w, http.StatusOK, history)
}

type productTrend struct {
	ProductID   string                `json:"product_id"`
	ProductName string                `json:"product_name"`
	BrandName   string                `json:"brand_name"`
	PeriodDays  int                   `json:"period_days"`
	Data        []*models.Observation `json:"data"`
}

// Trend returns one product's observations wrapped with its display
// metadata, for charting. Optional query parameter: days (default 7).
func (h *ProductHandler) Trend(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	days := intParam(r, "days", 7)

	product, err := h.products.Get(r.Context(), productID)
	if err != nil {
		RepoError(w, h.logger, err, "product: "+productID)
		return
	}

	data, err := h.rankings.History(r.Context(), productID, sinceDays(r, 7))
	if err != nil {
		RepoError(w, h.logger, err, "trend for product: "+productID)
		return
	}
	_ = WriteJSON(w, http.StatusOK, productTrend{
		ProductID:   productID,
		ProductName: product.ProductName,
		BrandName:   product.BrandName,
		PeriodDays:  days,
		Data:        data,
	})
}
