package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dersdefteri/internal/service"
)

var (
	// ErrNotSignedIn is returned when a request carries no usable session token.
	ErrNotSignedIn = fmt.Errorf("%w: %w", service.ErrUnauthorized, errors.New(service.MsgNotSignedIn))
	// ErrSessionExpired is returned for a token past its expiry.
	ErrSessionExpired = fmt.Errorf("%w: %w", service.ErrUnauthorized, errors.New(service.MsgSessionExpired))
	// ErrInvalidUserID is returned when the token subject is not a user id.
	ErrInvalidUserID = fmt.Errorf("%w: %w", service.ErrUnauthorized, errors.New(service.MsgInvalidUserID))
)

// ValidUserID reports whether id is an RFC 4122 UUID of version 1 to 5
// in its canonical hyphenated form.
func ValidUserID(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a Tokens signing with secret. Issued tokens expire after ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID and its expiry.
func (t *Tokens) Issue(userID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// UserID verifies token and returns the user id it was issued for.
func (t *Tokens) UserID(token string) (string, error) {
	if token == "" {
		return "", ErrNotSignedIn
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", ErrSessionExpired
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotSignedIn, err)
	}

	if !ValidUserID(claims.Subject) {
		return "", ErrInvalidUserID
	}
	return claims.Subject, nil
}
