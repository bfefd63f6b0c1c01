// ABOUTME: JWT session token issuance and verification for API requests
// ABOUTME: Uses HS256 signing with a configurable shared secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum acceptable signing secret length in bytes.
const MinSecretLength = 32

// Token errors
var (
	// ErrInvalidToken covers signature failure, decode failure, and expiry.
	// The cases are deliberately not distinguished so a caller can't learn
	// which check failed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmptySubject is returned when issuing a token without a subject.
	ErrEmptySubject = errors.New("token subject is empty")

	// ErrSecretTooShort is returned when the signing secret is below MinSecretLength.
	ErrSecretTooShort = fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
)

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// JWTCodec issues and verifies HS256 signed session tokens carrying
// {sub, iat, exp} claims. Validity is determined purely by signature and
// expiry at verification time; no server-side state is kept.
type JWTCodec struct {
	secret []byte
}

// NewJWTCodec creates a codec with the given signing secret.
func NewJWTCodec(secret []byte) (*JWTCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	return &JWTCodec{secret: secret}, nil
}

// Issue creates a signed token for the subject, valid for ttl from now.
func (c *JWTCodec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the token's signature and expiry and returns the embedded
// subject. It performs no directory lookup.
func (c *JWTCodec) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	return sub, nil
}
