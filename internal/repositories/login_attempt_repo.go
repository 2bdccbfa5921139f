package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/smartfarm/auth-api/internal/database"
	"github.com/smartfarm/auth-api/internal/models"
)

// LoginAttemptRepository handles database operations for login attempts.
// The table is append-only: rows are only ever inserted, and removed by
// the retention cleanup.
type LoginAttemptRepository struct {
	db *database.DB
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

// Record appends a login attempt
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (email, ip_address, success, user_id)
		VALUES (lower($1), $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		attempt.Email,
		attempt.IPAddress,
		attempt.Success,
		attempt.UserID,
	)

	return err
}

// CountByEmail returns the number of attempts recorded for an email since
// the given time, optionally restricted to failures.
func (r *LoginAttemptRepository) CountByEmail(ctx context.Context, email string, since time.Time, failuresOnly bool) (int, error) {
	query := `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = lower($1) AND created_at >= $2 AND (NOT $3 OR success = false)
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, email, since, failuresOnly).Scan(&count)
	return count, err
}

// DeleteOlderThan removes attempts past the retention window
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	query := `DELETE FROM login_attempts WHERE created_at < NOW() - make_interval(secs => $1)`

	result, err := r.db.Pool.Exec(ctx, query, retention.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to delete aged login attempts: %w", err)
	}

	return result.RowsAffected(), nil
}
