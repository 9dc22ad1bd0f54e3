// Package password hashes and checks staff credentials. The same
// bcrypt comparison backs login and the admin confirmation step on
// manual verification overrides.
package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used for staff passwords
	DefaultCost = 12

	// MinLength is the shortest password accepted at registration
	MinLength = 8
)

// Hash derives a bcrypt hash for a staff password
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether password matches the stored bcrypt hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashToken digests a refresh token with SHA256 so only the digest is
// persisted
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword checks a candidate password against the minimum
// length rule
func ValidatePassword(password string) bool {
	return len(password) >= MinLength
}
