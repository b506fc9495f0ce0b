package api

import (
	"net/http"

	"github.com/nitro-scheduler/nitro/pkg/observability"
)

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	registry := observability.NewHealthRegistry()
	registry.Register("database", observability.DatabaseHealthChecker(h.c.Conn.Ping))
	health := registry.GetOverallHealth(r.Context())

	status := http.StatusOK
	if health.Status != observability.HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
