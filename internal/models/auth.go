package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by a signed session token.
// Verified statelessly: signature plus expiry, no server-side session row.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
