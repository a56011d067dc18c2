package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/daap14/eventpass/internal/api/middleware"
)

func captureRequestID(t *testing.T, header string) (captured string, echoed string) {
	t.Helper()
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(middleware.RequestIDHeader, header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return captured, w.Header().Get(middleware.RequestIDHeader)
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	captured, echoed := captureRequestID(t, "")

	_, err := uuid.Parse(captured)
	assert.NoError(t, err, "generated request ID should be a valid UUID")
	assert.Equal(t, captured, echoed)
}

func TestRequestID_UsesExistingHeader(t *testing.T) {
	captured, echoed := captureRequestID(t, "gate-3-req-42")

	assert.Equal(t, "gate-3-req-42", captured)
	assert.Equal(t, "gate-3-req-42", echoed)
}

func TestRequestID_ReplacesUnusableHeader(t *testing.T) {
	for name, header := range map[string]string{
		"too long":  strings.Repeat("a", 200),
		"has space": "two words",
	} {
		t.Run(name, func(t *testing.T) {
			captured, _ := captureRequestID(t, header)
			assert.NotEqual(t, header, captured)
			_, err := uuid.Parse(captured)
			assert.NoError(t, err)
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, _ := captureRequestID(t, "")
		assert.False(t, ids[id], "request IDs should be unique")
		ids[id] = true
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))
}
