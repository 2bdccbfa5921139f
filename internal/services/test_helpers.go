package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/smartfarm/auth-api/internal/models"
)

// MockUserStore implements UserStore for testing
type MockUserStore struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	CreateFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	SetTwoFactorEnabledFunc func(ctx context.Context, id string, enabled bool) error
	SetTwoFactorCodeFunc    func(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearTwoFactorCodeFunc  func(ctx context.Context, id, code string) error
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserStore) SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error {
	if m.SetTwoFactorEnabledFunc != nil {
		return m.SetTwoFactorEnabledFunc(ctx, id, enabled)
	}
	return nil
}

func (m *MockUserStore) SetTwoFactorCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	if m.SetTwoFactorCodeFunc != nil {
		return m.SetTwoFactorCodeFunc(ctx, id, code, expiresAt)
	}
	return nil
}

func (m *MockUserStore) ClearTwoFactorCode(ctx context.Context, id, code string) error {
	if m.ClearTwoFactorCodeFunc != nil {
		return m.ClearTwoFactorCodeFunc(ctx, id, code)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendTwoFactorCodeFunc      func(ctx context.Context, email, code string) error
	SendPasswordResetEmailFunc func(ctx context.Context, email, token string) error
}

func (m *MockEmailService) SendTwoFactorCode(ctx context.Context, email, code string) error {
	if m.SendTwoFactorCodeFunc != nil {
		return m.SendTwoFactorCodeFunc(ctx, email, code)
	}
	return nil
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, token)
	}
	return nil
}

// MockAuditRecorder implements AuditRecorder for testing and captures
// every call for assertion.
type MockAuditRecorder struct {
	Attempts []RecordedAttempt
	Actions  []RecordedAction
}

type RecordedAttempt struct {
	Email   string
	IP      string
	Success bool
	UserID  *string
}

type RecordedAction struct {
	Action string
	UserID *string
	IP     string
}

func (m *MockAuditRecorder) RecordLoginAttempt(ctx context.Context, email, ip string, success bool, userID *string) {
	m.Attempts = append(m.Attempts, RecordedAttempt{Email: email, IP: ip, Success: success, UserID: userID})
}

func (m *MockAuditRecorder) Append(ctx context.Context, action string, userID *string, ip string) {
	m.Actions = append(m.Actions, RecordedAction{Action: action, UserID: userID, IP: ip})
}

// MockTwoFactorManager implements TwoFactorManager for testing
type MockTwoFactorManager struct {
	IssueLoginCodeFunc  func(ctx context.Context, user *models.User) error
	VerifyLoginCodeFunc func(ctx context.Context, userID, submitted string) (*models.User, error)
}

func (m *MockTwoFactorManager) IssueLoginCode(ctx context.Context, user *models.User) error {
	if m.IssueLoginCodeFunc != nil {
		return m.IssueLoginCodeFunc(ctx, user)
	}
	return nil
}

func (m *MockTwoFactorManager) VerifyLoginCode(ctx context.Context, userID, submitted string) (*models.User, error) {
	if m.VerifyLoginCodeFunc != nil {
		return m.VerifyLoginCodeFunc(ctx, userID, submitted)
	}
	return nil, models.ErrInvalidOrExpiredCode
}

// MockLoginAttemptStore implements LoginAttemptStore for testing
type MockLoginAttemptStore struct {
	RecordFunc func(ctx context.Context, attempt *models.LoginAttempt) error
}

func (m *MockLoginAttemptStore) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	return nil
}

// MockAuditLogStore implements AuditLogStore for testing
type MockAuditLogStore struct {
	CreateFunc func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	ListFunc   func(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

func (m *MockAuditLogStore) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return log, nil
}

func (m *MockAuditLogStore) List(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, nil
}

// MockPasswordResetStore implements PasswordResetStore for testing
type MockPasswordResetStore struct {
	CreateFunc    func(ctx context.Context, email, token string, expiresAt time.Time) (*models.PasswordResetToken, error)
	ConsumeTxFunc func(ctx context.Context, tx pgx.Tx, token string) (*models.PasswordResetToken, error)
}

func (m *MockPasswordResetStore) Create(ctx context.Context, email, token string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, email, token, expiresAt)
	}
	return &models.PasswordResetToken{Email: email, Token: token, ExpiresAt: expiresAt}, nil
}

func (m *MockPasswordResetStore) ConsumeTx(ctx context.Context, tx pgx.Tx, token string) (*models.PasswordResetToken, error) {
	if m.ConsumeTxFunc != nil {
		return m.ConsumeTxFunc(ctx, tx, token)
	}
	return nil, models.ErrNotFound
}

// MockPasswordUpdater implements PasswordUpdater for testing
type MockPasswordUpdater struct {
	UpdatePasswordByEmailTxFunc func(ctx context.Context, tx pgx.Tx, email, passwordHash string) error
}

func (m *MockPasswordUpdater) UpdatePasswordByEmailTx(ctx context.Context, tx pgx.Tx, email, passwordHash string) error {
	if m.UpdatePasswordByEmailTxFunc != nil {
		return m.UpdatePasswordByEmailTxFunc(ctx, tx, email, passwordHash)
	}
	return nil
}

// MockTxRunner implements TxRunner for testing. The callback receives a
// nil transaction; mocks paired with it ignore the tx argument.
type MockTxRunner struct {
	WithTransactionFunc func(ctx context.Context, fn func(pgx.Tx) error) error
}

func (m *MockTxRunner) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(nil)
}
