package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// AdminHandler handles admin login, logout and session checks.
type AdminHandler struct {
	sessions *session.Manager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sessions *session.Manager) *AdminHandler {
	return &AdminHandler{sessions: sessions}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.sessions.Login(req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotConfigured):
		response.Err(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "Admin credentials not configured on server", requestID)
		return
	case errors.Is(err, session.ErrInvalidCredentials):
		slog.Warn("admin login rejected", "requestId", requestID)
		response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", requestID)
		return
	default:
		slog.Error("admin login failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "UNKNOWN_ERROR", "Authentication failed", requestID)
		return
	}

	h.sessions.SetCookie(w, token)
	slog.Info("admin logged in", "requestId", requestID)
	response.Success(w, http.StatusOK, "Authenticated successfully", sessionResponse{Authenticated: true}, requestID)
}

// Logout handles POST /admin/logout.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	response.Success(w, http.StatusOK, "Logged out", sessionResponse{Authenticated: false}, middleware.GetRequestID(r.Context()))
}

// Session handles GET /admin/session.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	err := h.sessions.VerifyRequest(r)
	switch {
	case err == nil:
		response.Success(w, http.StatusOK, "Session valid", sessionResponse{Authenticated: true}, requestID)
	case errors.Is(err, http.ErrNoCookie):
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "No session found", requestID)
	default:
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
	}
}
