package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartfarm/auth-api/internal/database"
	"github.com/smartfarm/auth-api/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, email, password_hash, name, two_factor_enabled, two_factor_code, two_factor_code_expires_at, password_changed_at, created_at, updated_at`

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var twoFactorCode *string
	var codeExpiresAt, passwordChangedAt *time.Time

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.TwoFactorEnabled, &twoFactorCode, &codeExpiresAt,
		&passwordChangedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	user.TwoFactorCode = twoFactorCode
	user.TwoFactorCodeExpiresAt = codeExpiresAt
	user.PasswordChangedAt = passwordChangedAt

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail looks a user up by email, case-insensitively. Emails are
// stored lowercased; the lookup folds its argument so either form matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, name, two_factor_enabled, password_changed_at, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		user.TwoFactorEnabled, user.PasswordChangedAt, user.CreatedAt, user.UpdatedAt,
	))
}

// SetTwoFactorEnabled flips the 2FA flag to the given state.
func (r *UserRepository) SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error {
	query := `
		UPDATE users SET two_factor_enabled = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, enabled, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// SetTwoFactorCode stores a pending login code and its expiry on the user
// row, overwriting any prior code.
func (r *UserRepository) SetTwoFactorCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	query := `
		UPDATE users SET two_factor_code = $1, two_factor_code_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, code, expiresAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ClearTwoFactorCode invalidates a pending login code, guarded on the code
// value so two concurrent verifications cannot both consume it: the loser
// matches zero rows and gets ErrNotFound.
func (r *UserRepository) ClearTwoFactorCode(ctx context.Context, id, code string) error {
	query := `
		UPDATE users SET two_factor_code = NULL, two_factor_code_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND two_factor_code = $2
	`

	result, err := r.pool.Exec(ctx, query, id, code)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdatePasswordByEmailTx sets a new password hash inside an existing
// transaction. Reset-password pairs this with the token delete.
func (r *UserRepository) UpdatePasswordByEmailTx(ctx context.Context, tx pgx.Tx, email, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $1, password_changed_at = NOW(), updated_at = NOW()
		WHERE email = lower($2)
	`

	result, err := tx.Exec(ctx, query, passwordHash, email)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ClearExpiredTwoFactorCodes removes stale pending codes. Retention task.
func (r *UserRepository) ClearExpiredTwoFactorCodes(ctx context.Context) (int64, error) {
	query := `
		UPDATE users SET two_factor_code = NULL, two_factor_code_expires_at = NULL
		WHERE two_factor_code IS NOT NULL AND two_factor_code_expires_at <= NOW()
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired two-factor codes: %w", err)
	}

	return result.RowsAffected(), nil
}
