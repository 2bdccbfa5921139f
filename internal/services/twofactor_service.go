package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/models"
)

// UserStore defines the user persistence operations the services need
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error
	SetTwoFactorCode(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearTwoFactorCode(ctx context.Context, id, code string) error
}

// TwoFactorService manages the email one-time-code leg of login
type TwoFactorService struct {
	users      UserStore
	email      EmailService
	audit      AuditRecorder
	logger     *slog.Logger
	codeExpiry time.Duration
}

// NewTwoFactorService creates a new TwoFactorService
func NewTwoFactorService(users UserStore, email EmailService, audit AuditRecorder, logger *slog.Logger, codeExpiry time.Duration) *TwoFactorService {
	return &TwoFactorService{
		users:      users,
		email:      email,
		audit:      audit,
		logger:     logger,
		codeExpiry: codeExpiry,
	}
}

// IssueLoginCode generates and stores a fresh one-time code on the user
// row, overwriting any prior code, and dispatches it by email. Dispatch
// failure is returned: without the code the user cannot proceed.
func (s *TwoFactorService) IssueLoginCode(ctx context.Context, user *models.User) error {
	code, err := auth.GenerateOneTimeCode()
	if err != nil {
		s.logger.Error("failed to generate one-time code", slog.Any("error", err))
		return models.ErrInternalServer
	}

	expiresAt := time.Now().Add(s.codeExpiry)

	if err := s.users.SetTwoFactorCode(ctx, user.ID, code, expiresAt); err != nil {
		s.logger.Error("failed to store one-time code",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.email.SendTwoFactorCode(ctx, user.Email, code); err != nil {
		s.logger.Error("failed to dispatch one-time code",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrEmailDispatchFailed
	}

	s.logger.Info("one-time code issued", slog.String("user_id", user.ID))
	return nil
}

// VerifyLoginCode checks a submitted code against the pending one. On
// success the stored code is cleared so it cannot be replayed; the clear
// is guarded on the code value, so of two concurrent verifications only
// one wins. Wrong code and expired code are indistinguishable to callers.
func (s *TwoFactorService) VerifyLoginCode(ctx context.Context, userID, submitted string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidOrExpiredCode
		}
		s.logger.Error("failed to load user for code verification",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if user.TwoFactorCode == nil || user.TwoFactorCodeExpiresAt == nil {
		return nil, models.ErrInvalidOrExpiredCode
	}

	// Compare before the expiry check so both paths cost the same
	match := auth.CompareOneTimeCode(*user.TwoFactorCode, submitted)
	if !match || time.Now().After(*user.TwoFactorCodeExpiresAt) {
		return nil, models.ErrInvalidOrExpiredCode
	}

	if err := s.users.ClearTwoFactorCode(ctx, user.ID, *user.TwoFactorCode); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// A concurrent verification consumed the code first
			return nil, models.ErrInvalidOrExpiredCode
		}
		s.logger.Error("failed to clear consumed one-time code",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// Toggle flips the 2FA flag and returns the new state. Repeated calls
// alternate the state.
func (s *TwoFactorService) Toggle(ctx context.Context, userID, ip string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, models.ErrNotFound
		}
		s.logger.Error("failed to load user for 2FA toggle",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return false, models.ErrInternalServer
	}

	newState := !user.TwoFactorEnabled
	if err := s.users.SetTwoFactorEnabled(ctx, userID, newState); err != nil {
		s.logger.Error("failed to toggle 2FA",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return false, models.ErrInternalServer
	}

	s.audit.Append(ctx, models.AuditActionTwoFactorToggled, &userID, ip)
	s.logger.Info("two-factor state changed",
		slog.String("user_id", userID),
		slog.Bool("enabled", newState))

	return newState, nil
}
