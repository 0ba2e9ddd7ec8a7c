package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/limiter"
	"github.com/uangku/uangku/internal/render"
)

// RateLimit throttles an endpoint per client IP using the shared counter
// store, so the budget holds across instances. Store failures fail open:
// an unreachable Redis must not take authentication down with it.
func RateLimit(l *limiter.Limiter, name string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := ctxkeys.ClientIP(r.Context())
			if ip == "" {
				ip = getClientIP(r)
			}

			err := l.Allow(r.Context(), name+":"+ip)
			if err != nil {
				var throttled *limiter.ThrottledError
				if errors.As(err, &throttled) {
					slog.Warn("rate limit exceeded",
						"ip", ip,
						"path", r.URL.Path,
					)
					render.Throttled(w, throttled.RetryAfter)
					return
				}

				slog.Warn("rate limiter unavailable, failing open", "error", err)
			}

			next(w, r)
		}
	}
}
