package models

import (
	"time"
)

// PasswordResetToken proves ownership of an email for password recovery.
// A token is usable at most once and only before ExpiresAt; consumption
// deletes the row atomically with the password update.
type PasswordResetToken struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	Email     string    `db:"email"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// IsExpired checks if the token has expired.
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
