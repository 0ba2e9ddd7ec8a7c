package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a single-message error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ValidationFailed writes a 422 with per-field messages.
func ValidationFailed(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// Throttled writes a 429 with a Retry-After header in whole seconds,
// rounded up so clients never retry early.
func Throttled(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if retryAfter > time.Duration(seconds)*time.Second {
		seconds++
	}
	if seconds < 1 {
		seconds = 1
	}

	w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	JSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "too many requests",
		"retry_after": seconds,
	})
}
