package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

const otpDigits = 6

// GenerateOneTimeCode draws a 6-digit numeric code uniformly from
// 000000-999999 using crypto/rand. Rejection sampling avoids modulo bias.
func GenerateOneTimeCode() (string, error) {
	const space = 1000000
	// Largest multiple of the code space below 2^32
	const limit = (1 << 32) / space * space

	buf := make([]byte, 4)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate one-time code: %w", err)
		}
		v := binary.BigEndian.Uint32(buf)
		if uint64(v) < uint64(limit) {
			return fmt.Sprintf("%06d", v%space), nil
		}
	}
}

// CompareOneTimeCode compares a submitted code against the stored one in
// constant time. The 6-digit space is small; combined with rate limiting
// this resists both guessing and timing probes.
func CompareOneTimeCode(stored, submitted string) bool {
	if len(stored) != otpDigits || len(submitted) != otpDigits {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
