package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"chainpulse/pkg/contracts"
)

// ClientCounter reports how many websocket subscribers are connected.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	provider string
	hub      ClientCounter
	started  time.Time
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(provider string, hub ClientCounter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		provider: provider,
		hub:      hub,
		started:  time.Now(),
		logger:   logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "healthy",
		"version":  contracts.Version,
		"provider": h.provider,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	}
	if h.hub != nil {
		resp["websocket_clients"] = h.hub.ClientCount()
	}
	render.JSON(w, r, resp)
}

// ReadinessCheck handles GET /api/health/ready
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":   "ready",
		"provider": h.provider,
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
