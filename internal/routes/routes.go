package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/handlers"
	"github.com/smartfarm/auth-api/internal/middleware"
)

// Config carries the route-level settings
type Config struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	cfg Config,
	authHandler *handlers.AuthHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	userHandler *handlers.UserHandler,
	auditHandler *handlers.AuditHandler,
	tokenManager *auth.TokenManager,
	logger *slog.Logger,
) {
	loginLimiter := middleware.LoginRateLimit(cfg.LoginRateLimit, cfg.LoginRateWindow)

	// Public routes
	router.Post("/auth/register", authHandler.Register)
	router.With(loginLimiter).Post("/auth/login", authHandler.Login)
	router.Post("/auth/forgot-password", authHandler.ForgotPassword)
	router.Post("/auth/reset-password", authHandler.ResetPassword)
	router.With(loginLimiter).Post("/2fa/verify-login", twoFactorHandler.VerifyLogin)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, logger))

		r.Get("/users/me", userHandler.GetMe)
		r.Post("/2fa/toggle", twoFactorHandler.Toggle)
		r.Get("/audit/logs", auditHandler.List)
	})
}
