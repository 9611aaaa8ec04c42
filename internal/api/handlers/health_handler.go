package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck reports whether a backing service is reachable
type HealthCheck func(ctx context.Context) error

// HealthHandler serves the root welcome message and the health check
type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

// NewHealthHandler creates a health handler. checks may be empty.
func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to HBnB API",
		"version": h.version,
	})
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "healthy"
	}

	body := map[string]interface{}{"status": "healthy"}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	if len(components) > 0 {
		body["components"] = components
	}
	respondWithJSON(w, status, body)
}
