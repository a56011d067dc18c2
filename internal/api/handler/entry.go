package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/entry"
	"github.com/daap14/eventpass/internal/registration"
)

// EntryService is the subset of entry.Service the handlers use.
type EntryService interface {
	Search(ctx context.Context, query string) (*registration.Registration, error)
	Mark(ctx context.Context, passID, personType string, memberIndex *int) (*entry.Outcome, error)
	Undo(ctx context.Context, passID, personType string, memberIndex *int) (*entry.Outcome, error)
	BulkMark(ctx context.Context, passID string, selections []entry.Selection) (*entry.Outcome, error)
}

type entryRequest struct {
	PersonType  string `json:"personType"`
	MemberIndex *int   `json:"memberIndex"`
}

type selectionRequest struct {
	Type        string `json:"type"`
	MemberIndex *int   `json:"memberIndex"`
}

type bulkRequest struct {
	Selections []selectionRequest `json:"selections"`
}

type entryResponse struct {
	PassID      string `json:"passId"`
	PersonType  string `json:"personType,omitempty"`
	MemberIndex *int   `json:"memberIndex,omitempty"`
	Entered     bool   `json:"entered"`
	Count       int    `json:"count,omitempty"`
}

// EntryHandler handles gate-side search and check-in endpoints.
type EntryHandler struct {
	svc EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(svc EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

// Search handles GET /admin/entries/search?q=.
func (h *EntryHandler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	reg, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, err, "No registration found for this Pass ID or email", "Failed to search registration")
		return
	}

	response.Success(w, http.StatusOK, "Team found", toPassResponse(reg), requestID)
}

// Mark handles POST /admin/entries/{passId}/mark.
func (h *EntryHandler) Mark(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// Undo handles POST /admin/entries/{passId}/undo.
func (h *EntryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *EntryHandler) update(w http.ResponseWriter, r *http.Request, entered bool) {
	requestID := middleware.GetRequestID(r.Context())
	passID := chi.URLParam(r, "passId")

	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	apply := h.svc.Mark
	failure := "Failed to mark entry"
	if !entered {
		apply = h.svc.Undo
		failure = "Failed to undo entry"
	}

	out, err := apply(r.Context(), passID, req.PersonType, req.MemberIndex)
	if err != nil {
		writeServiceError(w, r, err, "Registration not found", failure)
		return
	}

	response.Success(w, http.StatusOK, out.Message, entryResponse{
		PassID:      passID,
		PersonType:  req.PersonType,
		MemberIndex: req.MemberIndex,
		Entered:     entered,
	}, requestID)
}

// Bulk handles POST /admin/entries/{passId}/bulk.
func (h *EntryHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	passID := chi.URLParam(r, "passId")

	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	selections := make([]entry.Selection, 0, len(req.Selections))
	for _, s := range req.Selections {
		selections = append(selections, entry.Selection(s))
	}

	out, err := h.svc.BulkMark(r.Context(), passID, selections)
	if err != nil {
		writeServiceError(w, r, err, "Registration not found", "Failed to mark entries")
		return
	}

	response.Success(w, http.StatusOK, out.Message, entryResponse{
		PassID:  passID,
		Entered: true,
		Count:   out.Affected,
	}, requestID)
}
