package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/models"
	"github.com/smartfarm/auth-api/internal/services"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext injects an authenticated user ID, as the session
// middleware would
func WithAuthContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

// DecodeResponse decodes a JSON response body into target
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, email, password, name, ip string) (*models.User, error)
	LoginFunc    func(ctx context.Context, email, password, ip string) (*services.LoginResult, error)
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name, ip string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, name, ip)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ip)
	}
	return nil, models.ErrUnauthorized
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	RequestFunc func(ctx context.Context, email string)
	ResetFunc   func(ctx context.Context, token, newPassword string) error
}

func (m *MockPasswordResetService) Request(ctx context.Context, email string) {
	if m.RequestFunc != nil {
		m.RequestFunc(ctx, email)
	}
}

func (m *MockPasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, token, newPassword)
	}
	return models.ErrInvalidOrExpiredToken
}

// MockTwoFactorVerifier implements TwoFactorVerifier for testing
type MockTwoFactorVerifier struct {
	VerifyTwoFactorFunc func(ctx context.Context, userID, code, ip string) (string, error)
}

func (m *MockTwoFactorVerifier) VerifyTwoFactor(ctx context.Context, userID, code, ip string) (string, error) {
	if m.VerifyTwoFactorFunc != nil {
		return m.VerifyTwoFactorFunc(ctx, userID, code, ip)
	}
	return "", models.ErrInvalidOrExpiredCode
}

// MockTwoFactorToggler implements TwoFactorToggler for testing
type MockTwoFactorToggler struct {
	ToggleFunc func(ctx context.Context, userID, ip string) (bool, error)
}

func (m *MockTwoFactorToggler) Toggle(ctx context.Context, userID, ip string) (bool, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, userID, ip)
	}
	return false, models.ErrNotFound
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	GetProfileFunc func(ctx context.Context, userID string) (*models.User, error)
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, models.ErrUnauthorized
}

// MockAuditService implements AuditServiceInterface for testing
type MockAuditService struct {
	ListFunc func(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

func (m *MockAuditService) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}
