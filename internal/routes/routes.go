package routes

import (
	"net/http"

	"github.com/uangku/uangku/internal/app"
	"github.com/uangku/uangku/internal/handler"
	"github.com/uangku/uangku/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.SiteViewService)
	auth := handler.NewAuthHandler(app.AuthService)
	oauth := handler.NewOAuthHandler(app.AuthService, app.Cfg)
	verify := handler.NewVerifyHandler(app.AuthService)
	settings := handler.NewSettingsHandler(app.UserService, app.AuthService)
	category := handler.NewCategoryHandler(app.CategoryService)
	transaction := handler.NewTransactionHandler(app.TransactionService)
	dashboard := handler.NewDashboardHandler(app.DashboardService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Visit tracking applies to the home page only; API reads and health
	// checks are not visits
	trackViews := middleware.TrackSiteView(app.SiteViewService)
	mux.Handle("GET /{$}", trackViews(http.HandlerFunc(home.Home)))
	mux.HandleFunc("GET /healthz", home.Health)

	// Auth (login is rate limited against brute force; registration throttles
	// itself inside the service so only successful signups count)
	loginLimiter := middleware.RateLimit(app.LoginLimiter, "login")

	mux.HandleFunc("POST /auth/register", middleware.RequireGuest(auth.Register))
	mux.HandleFunc("POST /auth/login", loginLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(auth.Me))

	// OAuth
	mux.HandleFunc("GET /auth/google", middleware.RequireGuest(oauth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", oauth.GoogleCallback)

	// Email verification (auth required, verification not)
	mux.HandleFunc("GET /auth/verify", middleware.RequireAuth(verify.Status))
	mux.HandleFunc("POST /auth/verify", middleware.RequireAuth(verify.Verify))
	mux.HandleFunc("POST /auth/verify/resend", middleware.RequireAuth(verify.Resend))

	// ============================================================================
	// PROTECTED ROUTES (verified users only)
	// ============================================================================

	// Dashboard
	mux.HandleFunc("GET /dashboard", middleware.RequireVerified(dashboard.Summary))

	// Categories
	mux.HandleFunc("GET /categories", middleware.RequireVerified(category.List))
	mux.HandleFunc("POST /categories", middleware.RequireVerified(category.Create))
	mux.HandleFunc("GET /categories/{id}", middleware.RequireVerified(category.Show))
	mux.HandleFunc("PUT /categories/{id}", middleware.RequireVerified(category.Update))
	mux.HandleFunc("DELETE /categories/{id}", middleware.RequireVerified(category.Delete))

	// Transactions
	mux.HandleFunc("GET /transactions", middleware.RequireVerified(transaction.List))
	mux.HandleFunc("POST /transactions", middleware.RequireVerified(transaction.Create))
	mux.HandleFunc("GET /transactions/{id}", middleware.RequireVerified(transaction.Show))
	mux.HandleFunc("PUT /transactions/{id}", middleware.RequireVerified(transaction.Update))
	mux.HandleFunc("DELETE /transactions/{id}", middleware.RequireVerified(transaction.Delete))

	// Settings (available before verification so users can fix a typoed email)
	mux.HandleFunc("PATCH /settings/profile", middleware.RequireAuth(settings.UpdateProfile))
	mux.HandleFunc("PUT /settings/password", middleware.RequireAuth(settings.ChangePassword))
	mux.HandleFunc("DELETE /settings/account", middleware.RequireAuth(settings.DeleteAccount))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.SecurityHeaders,
		middleware.WithClientIP,
		middleware.RequestLogging,
		middleware.CSRFProtection(app.Cfg.IsProduction()),
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)
}
