package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger  zerolog.Logger
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger zerolog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}, h.logger)
}
