package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/export"
)

// Exporter builds spreadsheet exports.
type Exporter interface {
	Export(ctx context.Context) (*export.File, error)
	MirrorToSheets(ctx context.Context) (int, error)
}

type mirrorResponse struct {
	Rows  int    `json:"rows"`
	Sheet string `json:"sheet"`
}

// ExportHandler serves the registration spreadsheet.
type ExportHandler struct {
	exporter Exporter
	pass     string
}

// NewExportHandler creates an ExportHandler guarded by pass. An empty pass
// rejects every download.
func NewExportHandler(exporter Exporter, pass string) *ExportHandler {
	return &ExportHandler{exporter: exporter, pass: pass}
}

// Download handles GET /api/details?pass=.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r.URL.Query().Get("pass")) {
		response.PlainError(w, http.StatusUnauthorized, "Unauthorized. Invalid pass.")
		return
	}

	file, err := h.exporter.Export(r.Context())
	if err != nil {
		if errors.Is(err, export.ErrNoRegistrations) {
			response.PlainError(w, http.StatusNotFound, "No registrations found.")
			return
		}
		slog.Error("failed to generate export", "error", err, "requestId", middleware.GetRequestID(r.Context()))
		response.PlainError(w, http.StatusInternalServerError, "Failed to generate Excel.")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		slog.Error("failed to write export", "error", err, "file", file.Name)
	}
}

// MirrorSheets handles POST /admin/export/sheets.
func (h *ExportHandler) MirrorSheets(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	rows, err := h.exporter.MirrorToSheets(r.Context())
	if err != nil {
		if errors.Is(err, export.ErrMirrorNotConfigured) {
			response.Err(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "Google Sheets export is not configured on server", requestID)
			return
		}
		slog.Error("failed to mirror registrations to sheet", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "UNKNOWN_ERROR", "Failed to update Google Sheet", requestID)
		return
	}

	response.Success(w, http.StatusOK, fmt.Sprintf("%d row(s) written to Google Sheet", rows), mirrorResponse{
		Rows:  rows,
		Sheet: export.SheetName,
	}, requestID)
}

func (h *ExportHandler) authorized(given string) bool {
	if h.pass == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.pass)) == 1
}
