package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smartfarm/auth-api/internal/models"
)

// UserService exposes the profile of the authenticated user
type UserService struct {
	users  UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users UserStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the user identified by a verified session token
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Token outlived the account
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by id", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}
