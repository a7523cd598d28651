package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frage-dev/frage/pkg/api"
	"github.com/frage-dev/frage/pkg/observability"
)

// Require creates HTTP middleware that rejects requests without a valid
// bearer token. On success the resolved user is injected into the request
// context and can be retrieved with UserFromContext. The limiter is
// optional; pass nil to disable rate limiting.
//
// 401 responses always carry a WWW-Authenticate challenge so clients know
// to present a bearer token.
func Require(resolver *Resolver, limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				slog.Warn("authorization header invalid",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
				observability.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				writeUnauthenticated(w)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					slog.Warn("token validation failed",
						"path", r.URL.Path,
						"remote_addr", r.RemoteAddr,
					)
					observability.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
					writeUnauthenticated(w)
					return
				}
				slog.Error("identity resolution failed", "error", err)
				writeJSONError(w, http.StatusInternalServerError,
					api.NewServerError("internal authentication error"))
				return
			}

			if limiter != nil {
				if err := limiter.Allow(r.Context(), user.ID); err != nil {
					slog.Warn("rate limit exceeded", "subject", user.ID)
					observability.RateLimitRejectedTotal.Inc()
					writeJSONError(w, http.StatusTooManyRequests,
						api.NewTooManyRequestsError("rate limit exceeded"))
					return
				}
			}

			slog.Debug("authentication succeeded",
				"subject", user.Email,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), user)))
		})
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized,
		api.NewUnauthenticatedError("authentication required"))
}

func writeJSONError(w http.ResponseWriter, status int, apiErr *api.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}
