package models

import "time"

// Audit actions
const (
	AuditActionRegisterSuccess  = "USER_REGISTER_SUCCESS"
	AuditActionLoginSuccess     = "USER_LOGIN_SUCCESS"
	AuditActionPasswordReset    = "USER_PASSWORD_RESET"
	AuditActionTwoFactorToggled = "USER_2FA_TOGGLED"
)

// AuditLog is an immutable record of a security-relevant action.
type AuditLog struct {
	ID        string    `db:"id"`
	Action    string    `db:"action"`
	UserID    *string   `db:"user_id"`
	IPAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
}
