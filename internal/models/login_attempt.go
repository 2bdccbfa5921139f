package models

import "time"

// LoginAttempt represents a single login attempt. Rows are append-only:
// one record per attempt regardless of outcome, never mutated or deleted
// except by retention cleanup.
type LoginAttempt struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	IPAddress string     `db:"ip_address"`
	Success   bool       `db:"success"`
	UserID    *string    `db:"user_id"`
	CreatedAt time.Time  `db:"created_at"`
}
