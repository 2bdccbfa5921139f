package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Success(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
}

func TestHashPassword_EmptyPassword(t *testing.T) {
	hash, err := HashPassword("")
	assert.Error(t, err)
	assert.Empty(t, hash)
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	hash1, err := HashPassword("pw123456")
	require.NoError(t, err)
	hash2, err := HashPassword("pw123456")
	require.NoError(t, err)

	// Same plaintext must not produce the same hash
	assert.NotEqual(t, hash1, hash2)
}

func TestComparePassword_Match(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "pw123456"))
}

func TestComparePassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("pw123456")
	require.NoError(t, err)

	assert.Error(t, ComparePassword(hash, "wrong-password"))
}

func TestComparePassword_MalformedHash(t *testing.T) {
	// A garbage hash is a mismatch, not a panic
	assert.Error(t, ComparePassword("not-a-bcrypt-hash", "pw123456"))
	assert.Error(t, ComparePassword("", "pw123456"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"minimum length", "12345678", false},
		{"typical", "correct horse battery", false},
		{"too short", "1234567", true},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"max length", strings.Repeat("a", 128), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
