package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/smartfarm/auth-api/internal/models"
)

// Token verification failures. All of them map to "unauthenticated" at the
// HTTP boundary; the distinction exists for server-side logging only.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// TokenManager issues and verifies signed session tokens. Tokens are
// stateless: a signature and expiry check is the whole session store.
type TokenManager struct {
	secret string
	expiry time.Duration
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		expiry: expiry,
	}
}

// Issue signs a session token for the given user
func (tm *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()

	claims := &models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Verify checks a token's signature and expiry and returns the user it was
// issued to. Failures are one of ErrTokenMalformed, ErrTokenSignatureInvalid
// or ErrTokenExpired.
func (tm *TokenManager) Verify(tokenString string) (string, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignatureInvalid
		default:
			return "", ErrTokenMalformed
		}
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenMalformed
	}

	return claims.UserID, nil
}
