package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/registration"
)

const maxBodyBytes = 1 << 20

const (
	msgEmailExists    = "This email is already registered. Please use a different email or retrieve your pass using this email."
	msgTeamNameExists = "This team name is already taken. Please choose a different team name."
	msgMemberIndex    = "Member index is out of range for this team"
)

// decodeJSON reads a size-limited JSON body into dst, answering 400
// INVALID_JSON itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// writeServiceError maps registration-domain errors to responses. notFound is
// the message used for ErrNotFound; failure is the message used for
// anything unexpected, which is logged and reported as UNKNOWN_ERROR.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	requestID := middleware.GetRequestID(r.Context())

	var inputErr *registration.InputError
	switch {
	case errors.As(err, &inputErr):
		response.Err(w, http.StatusBadRequest, inputErr.Code, inputErr.Message, requestID)
	case errors.Is(err, registration.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", notFound, requestID)
	case errors.Is(err, registration.ErrEmailExists):
		response.Err(w, http.StatusConflict, "EMAIL_EXISTS", msgEmailExists, requestID)
	case errors.Is(err, registration.ErrTeamNameExists):
		response.Err(w, http.StatusConflict, "TEAM_NAME_EXISTS", msgTeamNameExists, requestID)
	case errors.Is(err, registration.ErrMemberIndexOutOfRange):
		response.Err(w, http.StatusBadRequest, "INVALID_MEMBER_INDEX", msgMemberIndex, requestID)
	default:
		slog.Error(failure, "error", err, "requestId", requestID, "path", r.URL.Path)
		response.Err(w, http.StatusInternalServerError, "UNKNOWN_ERROR", failure, requestID)
	}
}
