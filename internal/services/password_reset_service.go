package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/smartfarm/auth-api/internal/models"
	pkgauth "github.com/smartfarm/auth-api/pkg/auth"
	pkglogger "github.com/smartfarm/auth-api/pkg/logger"
)

const resetTokenBytes = 32 // 256 bits of entropy

// PasswordResetStore defines the interface for reset token persistence
type PasswordResetStore interface {
	Create(ctx context.Context, email, token string, expiresAt time.Time) (*models.PasswordResetToken, error)
	ConsumeTx(ctx context.Context, tx pgx.Tx, token string) (*models.PasswordResetToken, error)
}

// PasswordUpdater applies a password change inside a transaction
type PasswordUpdater interface {
	UpdatePasswordByEmailTx(ctx context.Context, tx pgx.Tx, email, passwordHash string) error
}

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// PasswordResetService owns the reset-token lifecycle: issue on request,
// single-use consumption paired atomically with the password update.
type PasswordResetService struct {
	tokens      PasswordResetStore
	users       UserStore
	passwords   PasswordUpdater
	tx          TxRunner
	email       EmailService
	audit       AuditRecorder
	logger      *slog.Logger
	tokenExpiry time.Duration
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	tokens PasswordResetStore,
	users UserStore,
	passwords PasswordUpdater,
	tx TxRunner,
	email EmailService,
	audit AuditRecorder,
	logger *slog.Logger,
	tokenExpiry time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		tokens:      tokens,
		users:       users,
		passwords:   passwords,
		tx:          tx,
		email:       email,
		audit:       audit,
		logger:      logger,
		tokenExpiry: tokenExpiry,
	}
}

// Request issues a reset token for the email if a matching account exists
// and dispatches it. It never reveals whether the account exists: every
// outcome, including email dispatch failure, is invisible to the caller.
func (s *PasswordResetService) Request(ctx context.Context, email string) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to look up user for password reset",
				slog.String("email", pkglogger.SanitizedEmail(email)),
				slog.Any("error", err))
		}
		return
	}

	token, err := generateResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Any("error", err))
		return
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	if _, err := s.tokens.Create(ctx, user.Email, token, expiresAt); err != nil {
		s.logger.Error("failed to store reset token",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return
	}

	if err := s.email.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.logger.Error("failed to dispatch reset email",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
	}
}

// Reset consumes the token and updates the password as one transaction.
// Either both writes commit or neither does; a second consumer of the same
// token loses the check-and-delete and gets ErrInvalidOrExpiredToken.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	var resetEmail string
	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		record, err := s.tokens.ConsumeTx(ctx, tx, token)
		if err != nil {
			return err
		}
		resetEmail = record.Email

		return s.passwords.UpdatePasswordByEmailTx(ctx, tx, record.Email, passwordHash)
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidOrExpiredToken
		}
		s.logger.Error("password reset transaction failed", slog.Any("error", err))
		return models.ErrInternalServer
	}

	user, err := s.users.GetByEmail(ctx, resetEmail)
	if err == nil {
		s.audit.Append(ctx, models.AuditActionPasswordReset, &user.ID, "")
	}

	s.logger.Info("password reset completed",
		slog.String("email", pkglogger.SanitizedEmail(resetEmail)))
	return nil
}

// generateResetToken returns a cryptographically random hex token
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
