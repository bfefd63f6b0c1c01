// ABOUTME: Password hashing and verification using bcrypt
// ABOUTME: Includes a dummy-compare helper for enumeration resistance

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash is returned when a stored digest is structurally malformed.
var ErrInvalidHash = errors.New("invalid password hash")

// dummyHash is a valid bcrypt digest used for timing-safe comparison when the
// account doesn't exist. This prevents timing attacks that could enumerate
// valid emails.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes the plaintext with bcrypt at the default cost.
// The resulting digest embeds its own salt and cost parameters.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies the plaintext against a stored digest. A mismatch
// returns (false, nil); an error is returned only when the digest itself is
// malformed.
func CheckPassword(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
}

// DummyCompare burns one bcrypt verification against a fixed digest so the
// unknown-account path costs the same as a real password check.
func DummyCompare(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
