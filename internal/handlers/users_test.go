package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartfarm/auth-api/internal/models"
)

func TestUserHandler_GetMe(t *testing.T) {
	code := "123456"
	expires := time.Now().Add(5 * time.Minute)
	service := &MockUserService{
		GetProfileFunc: func(ctx context.Context, userID string) (*models.User, error) {
			return &models.User{
				ID:                     userID,
				Email:                  "user@example.com",
				Name:                   "Test User",
				PasswordHash:           "$2a$12$secret",
				TwoFactorEnabled:       true,
				TwoFactorCode:          &code,
				TwoFactorCodeExpiresAt: &expires,
				CreatedAt:              time.Now(),
			}, nil
		},
	}
	handler := NewUserHandler(service)

	req := WithAuthContext(NewTestRequest(t, http.MethodGet, "/users/me", nil), "user-123")
	w := httptest.NewRecorder()
	handler.GetMe(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	DecodeResponse(t, w, &resp)
	assert.Equal(t, "user-123", resp.ID)
	assert.Equal(t, "user@example.com", resp.Email)
	assert.True(t, resp.TwoFactorEnabled)

	// Neither credentials nor the pending code may leak
	body := w.Body.String()
	assert.NotContains(t, body, "$2a$12$secret")
	assert.NotContains(t, body, "123456")
}

func TestUserHandler_GetMe_MissingAuth(t *testing.T) {
	handler := NewUserHandler(&MockUserService{})

	req := NewTestRequest(t, http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	handler.GetMe(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_GetMe_DeletedUser(t *testing.T) {
	service := &MockUserService{
		GetProfileFunc: func(ctx context.Context, userID string) (*models.User, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := NewUserHandler(service)

	req := WithAuthContext(NewTestRequest(t, http.MethodGet, "/users/me", nil), "gone")
	w := httptest.NewRecorder()
	handler.GetMe(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
