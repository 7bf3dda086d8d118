package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/models"
	"github.com/happypororo/W-Best-Tracker/pkg/repositories"
)

// ChangeHandler serves rank-mover and price-movement queries.
type ChangeHandler struct {
	changes repositories.ChangeRepository
	logger  *zap.Logger
}

// NewChangeHandler creates a ChangeHandler.
func NewChangeHandler(changes repositories.ChangeRepository, logger *zap.Logger) *ChangeHandler {
	return &ChangeHandler{changes: changes, logger: logger}
}

// RegisterRoutes registers change routes on the given mux.
func (h *ChangeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ranking-changes", h.RankMovers)
	mux.HandleFunc("GET /api/price-changes", h.PriceMovers)
}

// RankMovers returns rank change facts in a window, biggest absolute moves
// first. Query parameters: hours (default 24), direction ("up"/"down"),
// limit.
func (h *ChangeHandler) RankMovers(w http.ResponseWriter, r *http.Request) {
	direction := r.URL.Query().Get("direction")
	if direction != "" && direction != models.RankChangeUp && direction != models.RankChangeDown {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_direction", "direction must be 'up' or 'down'")
		return
	}

	movers, err := h.changes.RankMovers(r.Context(), sinceHours(r, 24), direction, intParam(r, "limit", 20))
	if err != nil {
		RepoError(w, h.logger, err, "ranking changes")
		return
	}
	_ = WriteJSON(w, http.StatusOK, movers)
}

// PriceMovers returns price change facts in a window, split into increases
// and decreases. Query parameters: hours (default 24), limit per direction.
func (h *ChangeHandler) PriceMovers(w http.ResponseWriter, r *http.Request) {
	since := sinceHours(r, 24)
	limit := intParam(r, "limit", 20)

	increased, err := h.changes.PriceMovers(r.Context(), since, repositories.PriceIncreased, limit)
	if err != nil {
		RepoError(w, h.logger, err, "price changes")
		return
	}
	decreased, err := h.changes.PriceMovers(r.Context(), since, repositories.PriceDecreased, limit)
	if err != nil {
		RepoError(w, h.logger, err, "price changes")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]interface{}{
		"price_increased": increased,
		"price_decreased": decreased,
	})
}
