package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/background"
	"github.com/smartfarm/auth-api/internal/config"
	"github.com/smartfarm/auth-api/internal/database"
	"github.com/smartfarm/auth-api/internal/handlers"
	middlewareCustom "github.com/smartfarm/auth-api/internal/middleware"
	"github.com/smartfarm/auth-api/internal/repositories"
	"github.com/smartfarm/auth-api/internal/routes"
	"github.com/smartfarm/auth-api/internal/services"
	pkghttp "github.com/smartfarm/auth-api/pkg/http"
	pkglogger "github.com/smartfarm/auth-api/pkg/logger"
)

// cleanupStores adapts the repositories to the background sweeper
type cleanupStores struct {
	resets   *repositories.PasswordResetRepository
	users    *repositories.UserRepository
	attempts *repositories.LoginAttemptRepository
}

func (s cleanupStores) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpired(ctx)
}

func (s cleanupStores) ClearExpiredTwoFactorCodes(ctx context.Context) (int64, error) {
	return s.users.ClearExpiredTwoFactorCodes(ctx)
}

func (s cleanupStores) DeleteLoginAttemptsOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	return s.attempts.DeleteOlderThan(ctx, retention)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)
	passwordResetRepo := repositories.NewPasswordResetRepository(db)

	// Auth primitives
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   100,
		RandomDelayMs: 100,
	})

	auditLogger := pkglogger.NewAuditLogger(logger)

	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.ResetURLBase,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Services
	auditService := services.NewAuditService(loginAttemptRepo, auditLogRepo, auditLogger, logger)
	twoFactorService := services.NewTwoFactorService(userRepo, emailService, auditService, logger, cfg.Auth.TwoFactorCodeExpiry)
	authService := services.NewAuthService(userRepo, tokenManager, twoFactorService, auditService, timingDelay, logger)
	passwordResetService := services.NewPasswordResetService(
		passwordResetRepo,
		userRepo,
		userRepo,
		db,
		emailService,
		auditService,
		logger,
		cfg.Auth.ResetTokenExpiry,
	)
	userService := services.NewUserService(userRepo, logger)

	// Handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, passwordResetService, ipConfig)
	twoFactorHandler := handlers.NewTwoFactorHandler(authService, twoFactorService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Background sweep of expired tokens, codes and aged attempts
	cleanupManager := background.NewCleanupManager(
		cleanupStores{resets: passwordResetRepo, users: userRepo, attempts: loginAttemptRepo},
		logger,
		cfg.Auth.CleanupInterval,
		cfg.Auth.AttemptRetention,
	)

	// Router
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(
		router,
		routes.Config{
			LoginRateLimit:  cfg.Auth.LoginRateLimit,
			LoginRateWindow: cfg.Auth.LoginRateWindow,
		},
		authHandler,
		twoFactorHandler,
		userHandler,
		auditHandler,
		tokenManager,
		logger,
	)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
