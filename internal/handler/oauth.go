package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/uangku/uangku/internal/config"
	"github.com/uangku/uangku/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type oauthHandler struct {
	authService       *service.AuthService
	googleOAuthConfig *oauth2.Config
	isProduction      bool
	appURL            string
}

func NewOAuthHandler(authService *service.AuthService, cfg *config.Config) *oauthHandler {
	return &oauthHandler{
		authService: authService,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		isProduction: cfg.IsProduction(),
		appURL:       cfg.AppURL,
	}
}

// GoogleAuth redirects the user to the Google OAuth consent screen.
func (h *oauthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	// Generate secure state token for CSRF protection
	state := generateOAuthState()

	// Store state in secure cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	authURL := h.googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth callback from Google.
func (h *oauthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	// Validate state parameter for CSRF protection
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("google oauth state validation failed", "error", err)
		h.redirectWithStatus(w, r, "google sign-in session expired, please try again")
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code")
		h.redirectWithStatus(w, r, "google sign-in was cancelled")
		return
	}

	token, err := h.googleOAuthConfig.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("google oauth token exchange failed", "error", err)
		h.redirectWithStatus(w, r, "google sign-in failed, please try again")
		return
	}

	identity, err := h.fetchGoogleIdentity(r, token)
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		h.redirectWithStatus(w, r, "google sign-in failed, please try again")
		return
	}

	user, err := h.authService.AuthenticateGoogle(*identity)
	if err != nil {
		slog.Error("google authentication failed", "error", err, "email", identity.Email)
		h.redirectWithStatus(w, r, "sign-in failed, please try again")
		return
	}

	jwtToken, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		h.redirectWithStatus(w, r, "sign-in failed, please try again")
		return
	}

	h.authService.SetJWTCookie(w, jwtToken, time.Now().Add(h.authService.JWTExpiry()))

	slog.Info("user logged in with google oauth", "user_id", user.ID)
	http.Redirect(w, r, h.appURL+"/dashboard", http.StatusSeeOther)
}

// redirectWithStatus sends the browser back to the login entry with a
// user-visible status message. The callback is a navigation, not an API
// call, so no record is created and no JSON error is rendered.
func (h *oauthHandler) redirectWithStatus(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, h.appURL+"/login?status="+url.QueryEscape(message), http.StatusSeeOther)
}

func (h *oauthHandler) fetchGoogleIdentity(r *http.Request, token *oauth2.Token) (*service.GoogleIdentity, error) {
	client := h.googleOAuthConfig.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	var userInfo struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	err = json.NewDecoder(resp.Body).Decode(&userInfo)
	if err != nil {
		return nil, err
	}

	return &service.GoogleIdentity{
		ID:        userInfo.ID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		AvatarURL: userInfo.Picture,
	}, nil
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
