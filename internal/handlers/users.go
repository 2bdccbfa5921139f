package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/models"
	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

// UserServiceInterface defines the interface for user profile lookups
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UserResponse is the public view of a user profile. The password hash and
// any pending 2FA code never appear here.
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// GetMe returns the profile of the authenticated user
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		TwoFactorEnabled: user.TwoFactorEnabled,
		CreatedAt:        user.CreatedAt,
	})
}
