package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/uangku/uangku/internal/limiter"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/repository"
	"github.com/uangku/uangku/internal/service"
)

// respondServiceError translates service-layer errors into HTTP responses.
// Anything unrecognized is a 500 with the detail kept in the log, not the
// response body.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		render.ValidationFailed(w, validation.Fields)
		return
	}

	var throttled *limiter.ThrottledError
	if errors.As(err, &throttled) {
		render.Throttled(w, throttled.RetryAfter)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		render.Error(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrCategoryInUse):
		render.Error(w, http.StatusConflict, "category still has transactions")
	case errors.Is(err, service.ErrCodeExpired):
		render.ValidationFailed(w, map[string]string{"code": "verification code has expired"})
	case errors.Is(err, repository.ErrCodeNotFound):
		render.ValidationFailed(w, map[string]string{"code": "invalid verification code"})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrTransactionNotFound):
		render.Error(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		render.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
