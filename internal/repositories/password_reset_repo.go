package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartfarm/auth-api/internal/database"
	"github.com/smartfarm/auth-api/internal/models"
)

// PasswordResetRepository handles password reset token data access
type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *database.DB) *PasswordResetRepository {
	return &PasswordResetRepository{pool: db.Pool}
}

func scanResetTokenRow(row rowScanner) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken

	err := row.Scan(&token.ID, &token.Token, &token.Email, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

// Create stores a reset token keyed by email. The email does not have to
// belong to a registered user; the caller decides whether to issue.
func (r *PasswordResetRepository) Create(ctx context.Context, email, token string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	query := `
		INSERT INTO password_reset_tokens (token, email, expires_at)
		VALUES ($1, lower($2), $3)
		RETURNING id, token, email, expires_at, created_at
	`

	result, err := scanResetTokenRow(r.pool.QueryRow(ctx, query, token, email, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create password reset token: %w", err)
	}

	return result, nil
}

// ConsumeTx validates and deletes a token as one statement inside the
// caller's transaction. The delete IS the validity check: an expired,
// unknown, or already-consumed token matches zero rows and yields
// ErrNotFound, so two concurrent consumers cannot both succeed.
func (r *PasswordResetRepository) ConsumeTx(ctx context.Context, tx pgx.Tx, token string) (*models.PasswordResetToken, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1 AND expires_at > NOW()
		RETURNING id, token, email, expires_at, created_at
	`

	return scanResetTokenRow(tx.QueryRow(ctx, query, token))
}

// DeleteExpired removes reset tokens past their expiry. Retention task.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at <= NOW()`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
