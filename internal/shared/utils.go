// Package shared holds helpers used by both the terminal client and the stub
// API: random tokens and wiping secrets read from the terminal.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MakeRandHexString returns size random bytes hex encoded, so the string is
// 2*size characters long. The stub API uses it for password reset tokens.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b. Passwords read with term.ReadPassword are wiped
// once they have been copied into a request.
func WipeByteArray(b []byte) {
	clear(b)
}
