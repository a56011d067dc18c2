package handler

import (
	"context"
	"net/http"

	"github.com/daap14/eventpass/internal/analytics"
	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
)

// AnalyticsReporter produces the attendance report.
type AnalyticsReporter interface {
	Report(ctx context.Context) (*analytics.Report, error)
}

// AnalyticsHandler handles GET /admin/analytics.
type AnalyticsHandler struct {
	reporter AnalyticsReporter
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(reporter AnalyticsReporter) *AnalyticsHandler {
	return &AnalyticsHandler{reporter: reporter}
}

// ServeHTTP returns the attendance report.
func (h *AnalyticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	report, err := h.reporter.Report(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "No registrations found", "Failed to load analytics")
		return
	}

	message := "Analytics loaded"
	if report.TotalTeams == 0 {
		message = "No registrations found"
	}
	response.Success(w, http.StatusOK, message, report, requestID)
}
