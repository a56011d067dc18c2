package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the registration store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	store   Pinger
	driver  string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger, driver, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		driver:  driver,
		version: version,
	}
}

type storageStatus struct {
	Driver    string `json:"driver"`
	Connected bool   `json:"connected"`
}

type healthData struct {
	Status  string        `json:"status"`
	Version string        `json:"version"`
	Storage storageStatus `json:"storage"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	status := "healthy"
	connected := true
	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("storage ping failed", "error", err, "driver", h.driver)
		status = "degraded"
		connected = false
	}

	data := healthData{
		Status:  status,
		Version: h.version,
		Storage: storageStatus{
			Driver:    h.driver,
			Connected: connected,
		},
	}

	response.Success(w, http.StatusOK, "Service "+status, data, requestID)
}
