package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/smartfarm/auth-api/internal/auth"
	"github.com/smartfarm/auth-api/internal/models"
	pkgauth "github.com/smartfarm/auth-api/pkg/auth"
)

// TwoFactorManager is the slice of TwoFactorService the login flow needs
type TwoFactorManager interface {
	IssueLoginCode(ctx context.Context, user *models.User) error
	VerifyLoginCode(ctx context.Context, userID, submitted string) (*models.User, error)
}

// AuthService orchestrates registration and the login state machine:
// credentials check, then either a session token or a 2FA challenge.
type AuthService struct {
	users     UserStore
	tm        *auth.TokenManager
	twoFactor TwoFactorManager
	audit     AuditRecorder
	timing    *auth.TimingDelay
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, tm *auth.TokenManager, twoFactor TwoFactorManager, audit AuditRecorder, timing *auth.TimingDelay, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tm:        tm,
		twoFactor: twoFactor,
		audit:     audit,
		timing:    timing,
		logger:    logger,
	}
}

// LoginResult is the outcome of a successful credentials check
type LoginResult struct {
	Token             string
	TwoFactorRequired bool
	UserID            string
}

// Register creates a new user account. No session token is issued; the
// user logs in separately. The audit entry is appended after the user row
// exists and its failure never undoes the registration.
func (s *AuthService) Register(ctx context.Context, email, password, name, ip string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already registered")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	passwordHash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	user := &models.User{
		Email:             email,
		PasswordHash:      passwordHash,
		Name:              name,
		PasswordChangedAt: &now,
	}

	createdUser, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Concurrent registration with the same email lost the race
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.Append(ctx, models.AuditActionRegisterSuccess, &createdUser.ID, ip)
	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))

	return createdUser, nil
}

// Login verifies credentials. Missing user and wrong password produce the
// same generic error after a comparable delay, and each records exactly
// one failed attempt. With 2FA disabled a session token is returned; with
// 2FA enabled a code is dispatched and the attempt/audit records are
// deferred until the code is verified.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	start := time.Now()
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.RecordLoginAttempt(ctx, email, ip, false, nil)
			s.timing.WaitFrom(start, false)
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.audit.RecordLoginAttempt(ctx, email, ip, false, &user.ID)
		s.timing.WaitFrom(start, false)
		return nil, models.ErrUnauthorized
	}

	if user.TwoFactorEnabled {
		if err := s.twoFactor.IssueLoginCode(ctx, user); err != nil {
			// The user cannot proceed without the code; surface the failure
			return nil, err
		}
		return &LoginResult{TwoFactorRequired: true, UserID: user.ID}, nil
	}

	token, err := s.tm.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue session token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.RecordLoginAttempt(ctx, email, ip, true, &user.ID)
	s.audit.Append(ctx, models.AuditActionLoginSuccess, &user.ID, ip)
	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &LoginResult{Token: token, UserID: user.ID}, nil
}

// VerifyTwoFactor completes a 2FA login. On success it records the
// deferred attempt and audit entries and issues the session token.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, userID, code, ip string) (string, error) {
	user, err := s.twoFactor.VerifyLoginCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, models.ErrInvalidOrExpiredCode) {
			s.audit.RecordLoginAttempt(ctx, knownEmail(ctx, s.users, userID), ip, false, &userID)
		}
		return "", err
	}

	token, err := s.tm.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue session token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.audit.RecordLoginAttempt(ctx, user.Email, ip, true, &user.ID)
	s.audit.Append(ctx, models.AuditActionLoginSuccess, &user.ID, ip)
	s.logger.Info("two-factor login completed", slog.String("user_id", user.ID))

	return token, nil
}

// knownEmail resolves a user's email for attempt records, falling back to
// empty when the user does not exist.
func knownEmail(ctx context.Context, users UserStore, userID string) string {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Email
}
