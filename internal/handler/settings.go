package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/uangku/uangku/internal/ctxkeys"
	"github.com/uangku/uangku/internal/render"
	"github.com/uangku/uangku/internal/service"
)

type settingsHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewSettingsHandler(userService *service.UserService, authService *service.AuthService) *settingsHandler {
	return &settingsHandler{userService: userService, authService: authService}
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *settingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	updated, err := h.userService.UpdateProfile(user.ID, req.Name, req.Email)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, updated)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *settingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := ctxkeys.User(r.Context())
	err := h.userService.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (h *settingsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	// Body is optional: Google-only accounts have no password to confirm
	var req deleteAccountRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	user := ctxkeys.User(r.Context())
	err := h.userService.DeleteAccount(user.ID, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.authService.ClearJWTCookie(w)

	slog.Info("account deleted via settings", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
