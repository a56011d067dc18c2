package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/registration"
)

// qrSize is the edge length in pixels of rendered pass QR codes.
const qrSize = 256

// RegistrationService is the subset of registration.Service the handlers use.
type RegistrationService interface {
	Create(ctx context.Context, in registration.CreateInput) (*registration.Registration, error)
	GetPass(ctx context.Context, email string) (*registration.Registration, error)
	GetByPassID(ctx context.Context, passID string) (*registration.Registration, error)
}

type memberRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	College  string `json:"college"`
}

type createRegistrationRequest struct {
	TeamLeadFullName    string          `json:"teamLeadFullName"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	College             string          `json:"college"`
	Year                string          `json:"year"`
	TeamName            string          `json:"teamName"`
	NumberOfTeamMembers int             `json:"numberOfTeamMembers"`
	TeamMembers         []memberRequest `json:"teamMembers"`
}

type registeredResponse struct {
	PassID   string `json:"passId"`
	TeamName string `json:"teamName"`
	Email    string `json:"email"`
}

// RegistrationHandler handles team sign-up and pass retrieval.
type RegistrationHandler struct {
	svc RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// Create handles POST /registrations.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createRegistrationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := registration.CreateInput{
		TeamLeadFullName:    req.TeamLeadFullName,
		Email:               req.Email,
		Phone:               req.Phone,
		College:             req.College,
		Year:                req.Year,
		TeamName:            req.TeamName,
		NumberOfTeamMembers: req.NumberOfTeamMembers,
	}
	for _, m := range req.TeamMembers {
		in.TeamMembers = append(in.TeamMembers, registration.MemberInput(m))
	}

	reg, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err, "Registration not found", "Failed to register team")
		return
	}

	response.Success(w, http.StatusCreated, "Team registered successfully", registeredResponse{
		PassID:   reg.PassID,
		TeamName: reg.TeamName,
		Email:    reg.Email,
	}, requestID)
}

// GetPass handles GET /passes?email=.
func (h *RegistrationHandler) GetPass(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	reg, err := h.svc.GetPass(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, r, err, "No registration found for this email", "Failed to retrieve pass details")
		return
	}

	response.Success(w, http.StatusOK, "Pass details retrieved successfully", toPassResponse(reg), requestID)
}

// QRCode handles GET /passes/{passId}/qr.png.
func (h *RegistrationHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.GetByPassID(r.Context(), chi.URLParam(r, "passId"))
	if err != nil {
		writeServiceError(w, r, err, "Pass not found", "Failed to render pass QR code")
		return
	}

	png, err := qrcode.Encode(reg.PassID, qrcode.Medium, qrSize)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to render pass QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		slog.Error("failed to write QR code", "error", err, "passId", reg.PassID)
	}
}
