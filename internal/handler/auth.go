package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/model"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password, ctxkeys.ClientIP(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.signIn(w, user)
	render.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.signIn(w, user)

	slog.Info("user logged in", "user_id", user.ID)
	render.JSON(w, http.StatusOK, user)
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user so the frontend can restore a session.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	render.JSON(w, http.StatusOK, map[string]any{
		"user":          user,
		"google_linked": user.IsGoogleUser(),
	})
}

func (h *authHandler) signIn(w http.ResponseWriter, user *model.User) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		// The account exists; the user can sign in manually
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		return
	}

	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))
}
