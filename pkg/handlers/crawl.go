package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
	"github.com/happypororo/W-Best-Tracker/pkg/services"
)

// CrawlHandler exposes the manual crawl trigger and run status.
type CrawlHandler struct {
	tracker *services.Tracker
	logger  *zap.Logger
}

// NewCrawlHandler creates a CrawlHandler.
func NewCrawlHandler(tracker *services.Tracker, logger *zap.Logger) *CrawlHandler {
	return &CrawlHandler{tracker: tracker, logger: logger}
}

// RegisterRoutes registers crawl routes on the given mux.
func (h *CrawlHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/crawl/trigger", h.Trigger)
	mux.HandleFunc("GET /api/crawl/status", h.Status)
}

// Trigger starts a crawl run in the background. A second trigger while a run
// is active is rejected, not queued.
func (h *CrawlHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	status := h.tracker.Status()
	if status.Running {
		_ = ErrorResponse(w, http.StatusConflict, "run_in_progress", "A crawl run is already active")
		return
	}

	go func() {
		// Detached from the request: the run outlives the HTTP response.
		if _, err := h.tracker.Run(context.Background()); err != nil && !errors.Is(err, apperrors.ErrRunInProgress) {
			h.logger.Error("Triggered crawl failed", zap.Error(err))
		}
	}()

	_ = WriteJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// Status reports whether a run is active and the last run's outcome.
func (h *CrawlHandler) Status(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, h.tracker.Status())
}
