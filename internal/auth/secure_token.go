package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns a hex-encoded token of byteLen random bytes
// from the platform CSPRNG. Used for invite and password-reset tokens;
// uniqueness is additionally enforced by a database constraint.
func GenerateSecureToken(byteLen int) (string, error) {
	if byteLen <= 0 {
		byteLen = 32
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
