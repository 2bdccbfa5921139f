package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-characters-long!!"

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)

	token, err := tm.Issue("user123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", userID)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute)

	token, err := tm.Issue("user123")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)
	other := NewTokenManager("a-different-secret-also-32-chars", 1*time.Hour)

	token, err := tm.Issue("user123")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestTokenManager_Verify_Malformed(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)

	tests := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
		"eyJhbGciOiJIUzI1NiJ9",
	}

	for _, tokenString := range tests {
		_, err := tm.Verify(tokenString)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tokenString)
	}
}

func TestTokenManager_TokensAreUnique(t *testing.T) {
	tm := NewTokenManager(testSecret, 1*time.Hour)

	t1, err := tm.Issue("user123")
	require.NoError(t, err)
	t2, err := tm.Issue("user123")
	require.NoError(t, err)

	// Distinct JTIs make every issued token unique
	assert.NotEqual(t, t1, t2)
}
