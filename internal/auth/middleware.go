package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserIDContextKey is the key for storing the authenticated user ID in context
	UserIDContextKey contextKey = "user_id"
)

// Middleware validates bearer session tokens and injects the user ID into
// the request context. A missing header is 401; a present but invalid,
// expired or malformed token is 403. The client never learns which of the
// three failures occurred; the distinction is logged server-side only.
func Middleware(tm *TokenManager, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := tm.Verify(parts[1])
			if err != nil {
				logger.Info("session token rejected", slog.String("reason", tokenFailureReason(err)))
				pkghttp.WriteForbidden(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user ID from request context
func GetUserIDFromContext(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDContextKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}
