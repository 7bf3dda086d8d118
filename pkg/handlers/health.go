package handlers

import (
	"net/http"
	"runtime"

	"github.com/happypororo/W-Best-Tracker/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Environment string `json:"environment"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health returns a bare "ok" for load balancer checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping returns service and version details.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "w-best-tracker",
		GoVersion:   runtime.Version(),
		Environment: h.cfg.Env,
	})
}
