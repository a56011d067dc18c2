package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daap14/eventpass/internal/analytics"
	"github.com/daap14/eventpass/internal/api/handler"
	"github.com/daap14/eventpass/internal/testutil"
)

type mockReporter struct {
	reportFn func(ctx context.Context) (*analytics.Report, error)
}

func (m *mockReporter) Report(ctx context.Context) (*analytics.Report, error) {
	return m.reportFn(ctx)
}

func TestAnalytics_Loaded(t *testing.T) {
	t.Parallel()

	repo := testutil.NewMemoryRepository()
	repo.Seed(
		testutil.Team("PASS-1", "A", "MIT", false, false),
		testutil.Team("PASS-2", "B", "MIT", true, true),
		testutil.Team("PASS-3", "C", "IIT", true, true),
	)
	h := handler.NewAnalyticsHandler(analytics.NewService(repo))

	req, w := makeChiRequest(http.MethodGet, "/admin/analytics", nil, nil)
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "Analytics loaded", env["message"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(67), data["entryPercentage"])
	assert.Equal(t, float64(1), data["teamsNotEntered"])
	assert.Equal(t, float64(2), data["teamsFullyEntered"])
}

func TestAnalytics_Empty(t *testing.T) {
	t.Parallel()

	h := handler.NewAnalyticsHandler(analytics.NewService(testutil.NewMemoryRepository()))

	req, w := makeChiRequest(http.MethodGet, "/admin/analytics", nil, nil)
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "No registrations found", env["message"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["totalTeams"])
	assert.Empty(t, data["teams"])
}

func TestAnalytics_StoreFailure(t *testing.T) {
	t.Parallel()

	h := handler.NewAnalyticsHandler(&mockReporter{reportFn: func(context.Context) (*analytics.Report, error) {
		return nil, errors.New("socket closed")
	}})

	req, w := makeChiRequest(http.MethodGet, "/admin/analytics", nil, nil)
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, "UNKNOWN_ERROR", env["error"])
	assert.Equal(t, "Failed to load analytics", env["message"])
}
