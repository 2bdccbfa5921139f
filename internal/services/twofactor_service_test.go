package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartfarm/auth-api/internal/models"
)

func newTwoFactorService(users UserStore, email EmailService, audit AuditRecorder) *TwoFactorService {
	return NewTwoFactorService(users, email, audit, newTestLogger(), 10*time.Minute)
}

func pendingCodeUser(code string, expiresAt time.Time) *models.User {
	return &models.User{
		ID:                     "user-123",
		Email:                  "user@example.com",
		TwoFactorEnabled:       true,
		TwoFactorCode:          &code,
		TwoFactorCodeExpiresAt: &expiresAt,
	}
}

func TestTwoFactorService_IssueLoginCode(t *testing.T) {
	var storedCode string
	var storedExpiry time.Time
	users := &MockUserStore{
		SetTwoFactorCodeFunc: func(ctx context.Context, id, code string, expiresAt time.Time) error {
			storedCode = code
			storedExpiry = expiresAt
			return nil
		},
	}
	var sentCode string
	email := &MockEmailService{
		SendTwoFactorCodeFunc: func(ctx context.Context, addr, code string) error {
			sentCode = code
			return nil
		},
	}
	service := newTwoFactorService(users, email, &MockAuditRecorder{})

	err := service.IssueLoginCode(context.Background(), &models.User{ID: "user-123", Email: "user@example.com"})

	require.NoError(t, err)
	assert.Len(t, storedCode, 6)
	assert.Equal(t, storedCode, sentCode)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), storedExpiry, 5*time.Second)
}

func TestTwoFactorService_IssueLoginCode_DispatchFailure(t *testing.T) {
	email := &MockEmailService{
		SendTwoFactorCodeFunc: func(ctx context.Context, addr, code string) error {
			return errors.New("ses unavailable")
		},
	}
	service := newTwoFactorService(&MockUserStore{}, email, &MockAuditRecorder{})

	err := service.IssueLoginCode(context.Background(), &models.User{ID: "user-123", Email: "user@example.com"})

	assert.ErrorIs(t, err, models.ErrEmailDispatchFailed)
}

func TestTwoFactorService_VerifyLoginCode_Success(t *testing.T) {
	cleared := false
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return pendingCodeUser("123456", time.Now().Add(5*time.Minute)), nil
		},
		ClearTwoFactorCodeFunc: func(ctx context.Context, id, code string) error {
			cleared = true
			assert.Equal(t, "123456", code)
			return nil
		},
	}
	service := newTwoFactorService(users, &MockEmailService{}, &MockAuditRecorder{})

	user, err := service.VerifyLoginCode(context.Background(), "user-123", "123456")

	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.True(t, cleared)
}

func TestTwoFactorService_VerifyLoginCode_WrongCode(t *testing.T) {
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return pendingCodeUser("123456", time.Now().Add(5*time.Minute)), nil
		},
		ClearTwoFactorCodeFunc: func(ctx context.Context, id, code string) error {
			t.Fatal("code must not be cleared on mismatch")
			return nil
		},
	}
	service := newTwoFactorService(users, &MockEmailService{}, &MockAuditRecorder{})

	user, err := service.VerifyLoginCode(context.Background(), "user-123", "654321")

	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredCode)
	assert.Nil(t, user)
}

func TestTwoFactorService_VerifyLoginCode_Expired(t *testing.T) {
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return pendingCodeUser("123456", time.Now().Add(-1*time.Minute)), nil
		},
	}
	service := newTwoFactorService(users, &MockEmailService{}, &MockAuditRecorder{})

	user, err := service.VerifyLoginCode(context.Background(), "user-123", "123456")

	// Correct code, but too late; caller sees the same generic error
	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredCode)
	assert.Nil(t, user)
}

func TestTwoFactorService_VerifyLoginCode_NoPendingCode(t *testing.T) {
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com", TwoFactorEnabled: true}, nil
		},
	}
	service := newTwoFactorService(users, &MockEmailService{}, &MockAuditRecorder{})

	_, err := service.VerifyLoginCode(context.Background(), "user-123", "123456")

	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredCode)
}

func TestTwoFactorService_VerifyLoginCode_AlreadyConsumed(t *testing.T) {
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return pendingCodeUser("123456", time.Now().Add(5*time.Minute)), nil
		},
		ClearTwoFactorCodeFunc: func(ctx context.Context, id, code string) error {
			// Another verification won the race
			return models.ErrNotFound
		},
	}
	service := newTwoFactorService(users, &MockEmailService{}, &MockAuditRecorder{})

	_, err := service.VerifyLoginCode(context.Background(), "user-123", "123456")

	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredCode)
}

func TestTwoFactorService_Toggle(t *testing.T) {
	enabled := false
	users := &MockUserStore{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com", TwoFactorEnabled: enabled}, nil
		},
		SetTwoFactorEnabledFunc: func(ctx context.Context, id string, state bool) error {
			enabled = state
			return nil
		},
	}
	audit := &MockAuditRecorder{}
	service := newTwoFactorService(users, &MockEmailService{}, audit)

	state, err := service.Toggle(context.Background(), "user-123", "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, state)

	state, err = service.Toggle(context.Background(), "user-123", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, state)

	require.Len(t, audit.Actions, 2)
	assert.Equal(t, models.AuditActionTwoFactorToggled, audit.Actions[0].Action)
	assert.Equal(t, models.AuditActionTwoFactorToggled, audit.Actions[1].Action)
}

func TestTwoFactorService_Toggle_UnknownUser(t *testing.T) {
	service := newTwoFactorService(&MockUserStore{}, &MockEmailService{}, &MockAuditRecorder{})

	_, err := service.Toggle(context.Background(), "ghost", "10.0.0.1")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
