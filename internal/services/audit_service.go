package services

import (
	"context"
	"log/slog"

	"github.com/smartfarm/auth-api/internal/models"
	pkglogger "github.com/smartfarm/auth-api/pkg/logger"
)

// LoginAttemptStore defines the interface for login attempt persistence
type LoginAttemptStore interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
}

// AuditLogStore defines the interface for audit log persistence
type AuditLogStore interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// AuditRecorder is implemented by AuditService and consumed by the auth
// flows. Recording never fails the enclosing operation.
type AuditRecorder interface {
	RecordLoginAttempt(ctx context.Context, email, ip string, success bool, userID *string)
	Append(ctx context.Context, action string, userID *string, ip string)
}

// AuditService records login attempts and security-relevant actions with a
// dual-write pattern: structured slog output plus an append-only table.
// Persistence failure is logged and swallowed so a broken audit store
// cannot block authentication.
type AuditService struct {
	attempts    LoginAttemptStore
	logs        AuditLogStore
	auditLogger *pkglogger.AuditLogger
	logger      *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(attempts LoginAttemptStore, logs AuditLogStore, auditLogger *pkglogger.AuditLogger, logger *slog.Logger) *AuditService {
	return &AuditService{
		attempts:    attempts,
		logs:        logs,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// RecordLoginAttempt appends exactly one attempt row for a login attempt,
// successful or not.
func (s *AuditService) RecordLoginAttempt(ctx context.Context, email, ip string, success bool, userID *string) {
	reason := ""
	if !success {
		reason = "invalid_credentials"
	}
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		Action:        "login_attempt",
		IPAddress:     ip,
		Success:       success,
		FailureReason: reason,
	})

	attempt := &models.LoginAttempt{
		Email:     email,
		IPAddress: ip,
		Success:   success,
		UserID:    userID,
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist login attempt",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err),
		)
	}
}

// Append writes an audit entry for a security-relevant action
func (s *AuditService) Append(ctx context.Context, action string, userID *string, ip string) {
	uid := ""
	if userID != nil {
		uid = *userID
	}
	s.auditLogger.LogAccountAction(action, uid, ip, nil)

	entry := &models.AuditLog{
		Action:    action,
		UserID:    userID,
		IPAddress: ip,
	}

	if _, err := s.logs.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

// List returns persisted audit entries newest-first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return s.logs.List(ctx, limit, offset)
}
