package handler

import (
	"context"
	"net/http"
	"time"

	"gov-be/internal/container"
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
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	logger.Debug("Health check requested")

	checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"
	code := http.StatusOK

	if db := h.container.GetDB(); db != nil {
		if err := db.Health(checkCtx); err != nil {
			checks["database"] = "unhealthy"
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	if redisClient := h.container.GetRedisClient(); redisClient != nil {
		if err := redisClient.Health(checkCtx); err != nil {
			checks["redis"] = "unhealthy"
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["redis"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "gov-be",
		Checks:    checks,
	}

	respondJSON(w, code, response)
}
