package handler

import (
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type verifyHandler struct {
	authService *service.AuthService
}

func NewVerifyHandler(authService *service.AuthService) *verifyHandler {
	return &verifyHandler{authService: authService}
}

// Status reports whether the authenticated user has verified their email.
func (h *verifyHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	render.JSON(w, http.StatusOK, map[string]any{
		"verified": user.IsVerified(),
		"email":    user.Email,
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *verifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	err := h.authService.VerifyEmailCode(user, req.Code)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]bool{"verified": true})
}

// Resend queues a fresh code. 202 because delivery is asynchronous.
func (h *verifyHandler) Resend(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.authService.ResendVerificationCode(r.Context(), user)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
