package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/eventpass/internal/api/response"
	"github.com/daap14/eventpass/internal/session"
)

// SessionVerifier checks the admin session carried by a request.
type SessionVerifier interface {
	VerifyRequest(r *http.Request) error
}

// RequireAdmin is middleware that rejects requests without a valid admin
// session cookie with 401 UNAUTHORIZED.
func RequireAdmin(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			err := verifier.VerifyRequest(r)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, http.ErrNoCookie):
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "No session found", requestID)
			case errors.Is(err, session.ErrInvalidSession), errors.Is(err, session.ErrSessionExpired):
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
			default:
				slog.Error("session verification failed", "error", err, "requestId", requestID)
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
			}
		})
	}
}
