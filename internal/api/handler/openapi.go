package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
)

// OpenAPIHandler serves the embedded OpenAPI document as JSON.
type OpenAPIHandler struct {
	rawYAML []byte

	once     sync.Once
	document []byte
	convErr  error
}

// NewOpenAPIHandler creates a handler for the given YAML document. The
// conversion to JSON happens once, on first request.
func NewOpenAPIHandler(yamlSpec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec}
}

// ServeHTTP writes the JSON form of the document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.document, h.convErr = yaml.YAMLToJSON(h.rawYAML)
	})

	if h.convErr != nil {
		slog.Error("failed to convert OpenAPI document to JSON", "error", h.convErr)
		response.Err(w, http.StatusInternalServerError, "UNKNOWN_ERROR", "Failed to load API description", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(h.document); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
