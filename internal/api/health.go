package api

import (
	"net/http"
	"time"

	"github.com/mediajournal/mediajournal/internal/api/respond"
)

// HealthReporter is satisfied by health.ServiceHealthChecker.
type HealthReporter interface {
	IsHealthy() bool
	Components() map[string]bool
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	health HealthReporter
}

func NewHealthHandler(h HealthReporter) *HealthHandler { return &HealthHandler{health: h} }

// CheckHealth handles GET /api/health. It answers 503 while any dependency is down.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "DOWN", http.StatusServiceUnavailable
	if h.health.IsHealthy() {
		status, code = "UP", http.StatusOK
	}
	respond.WriteJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": h.health.Components(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
