package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/smartfarm/auth-api/internal/auth"
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

// SentEmail represents a captured email message
type SentEmail struct {
	To    string
	Kind  string // "two_factor_code" or "password_reset"
	Value string // the code or token that was sent
}

// CapturingEmailService records outgoing mail instead of dispatching it
type CapturingEmailService struct {
	mu   sync.Mutex
	Sent []SentEmail
}

func (c *CapturingEmailService) SendTwoFactorCode(ctx context.Context, email, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, SentEmail{To: email, Kind: "two_factor_code", Value: code})
	return nil
}

func (c *CapturingEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, SentEmail{To: email, Kind: "password_reset", Value: token})
	return nil
}

// LastEmail returns the most recent captured email
func (c *CapturingEmailService) LastEmail() *SentEmail {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Sent) == 0 {
		return nil
	}
	return &c.Sent[len(c.Sent)-1]
}

// TestServer wraps httptest.Server with a real database and captured email
type TestServer struct {
	Server *httptest.Server
	DB     *database.DB
	Email  *CapturingEmailService
	Config *config.Config
}

// NewTestServer wires the full HTTP stack against a real database, with
// email capture in place of SES.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret-32-characters-long-for-testing",
			SessionTokenExpiry:  time.Hour,
			TwoFactorCodeExpiry: 10 * time.Minute,
			ResetTokenExpiry:    time.Hour,
			LoginRateLimit:      100, // high so tests are not throttled
			LoginRateWindow:     15 * time.Minute,
		},
		Server: config.ServerConfig{
			Env: "test",
		},
	}

	userRepo := repositories.NewUserRepository(db)
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)
	passwordResetRepo := repositories.NewPasswordResetRepository(db)

	emailCapture := &CapturingEmailService{}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})
	auditLogger := pkglogger.NewAuditLogger(logger)

	auditService := services.NewAuditService(loginAttemptRepo, auditLogRepo, auditLogger, logger)
	twoFactorService := services.NewTwoFactorService(userRepo, emailCapture, auditService, logger, cfg.Auth.TwoFactorCodeExpiry)
	authService := services.NewAuthService(userRepo, tokenManager, twoFactorService, auditService, timingDelay, logger)
	passwordResetService := services.NewPasswordResetService(
		passwordResetRepo,
		userRepo,
		userRepo,
		db,
		emailCapture,
		auditService,
		logger,
		cfg.Auth.ResetTokenExpiry,
	)
	userService := services.NewUserService(userRepo, logger)

	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, passwordResetService, ipConfig)
	twoFactorHandler := handlers.NewTwoFactorHandler(authService, twoFactorService, ipConfig)
	userHandler := handlers.NewUserHandler(userService)
	auditHandler := handlers.NewAuditHandler(auditService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(
		r,
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

	return &TestServer{
		Server: httptest.NewServer(r),
		DB:     db,
		Email:  emailCapture,
		Config: cfg,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated request with a session token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	return ts.Request(method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// ParseJSONResponse parses a JSON response body into target
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
