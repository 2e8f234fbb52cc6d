// Package middleware adapts the shared middleware to the API's JSON error
// envelope.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/music-roulette/internal/api/apierr"
	"github.com/mcoot/music-roulette/internal/middleware"
)

// retryAfterSeconds is advertised to rate-limited clients
const retryAfterSeconds = "60"

// Recovery creates panic recovery middleware that answers with an
// INTERNAL_ERROR body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// RateLimit creates per-client rate limiting that answers with a
// RATE_LIMITED body and a Retry-After header
func RateLimit(limiter *middleware.RateLimiter) func(http.Handler) http.Handler {
	return middleware.RateLimit(limiter, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", retryAfterSeconds)
		apierr.WriteError(w, apierr.NewRateLimitedError())
	})
}
