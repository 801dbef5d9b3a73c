package handler

import (
	"context"
	"net/http"
	"time"

	"borderland-arena/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "borderland-arena",
	})
}

// Ready handles GET /health/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Service:   "borderland-arena",
		Checks:    map[string]string{},
	}
	status := http.StatusOK

	for name, err := range h.container.Health(ctx) {
		if err != nil {
			h.container.GetLogger().WithError(err).WithField("check", name).Warn("Readiness check failed")
			response.Checks[name] = "unhealthy"
			response.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "healthy"
	}

	respondJSON(w, status, response)
}
