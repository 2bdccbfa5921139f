package models

import (
	"time"
)

type User struct {
	ID                     string
	Email                  string
	PasswordHash           string
	Name                   string
	TwoFactorEnabled       bool
	TwoFactorCode          *string    // Pending login code, nil when none issued
	TwoFactorCodeExpiresAt *time.Time // Expiry of the pending code
	PasswordChangedAt      *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// HasPendingTwoFactorCode reports whether an unexpired login code is stored.
func (u *User) HasPendingTwoFactorCode(now time.Time) bool {
	return u.TwoFactorCode != nil && u.TwoFactorCodeExpiresAt != nil && now.Before(*u.TwoFactorCodeExpiresAt)
}
