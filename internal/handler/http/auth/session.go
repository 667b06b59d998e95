// Package auth handles the Spotify OAuth login flow and the JWT sessions
// issued after it. API handlers identify the caller through the uid stored
// in the session token's subject claim.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSessionTTL = 24 * time.Hour

// Sessions issues and validates the JWT session tokens handed out after a
// successful OAuth login.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session manager. A zero ttl falls back to 24h.
func NewSessions(secret []byte, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Sessions{secret: secret, ttl: ttl}
}

// Issue mints a signed session token carrying the user's Spotify uid.
func (s *Sessions) Issue(uid string) (string, error) {
	if uid == "" {
		return "", errors.New("uid is required")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uid,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate checks an Authorization header value and returns the uid from
// the subject claim.
func (s *Sessions) Validate(authz string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", errors.New("missing bearer token")
	}
	tokenString := strings.TrimPrefix(authz, prefix)

	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token")
	}
	uid, err := claims.GetSubject()
	if err != nil || uid == "" {
		return "", errors.New("invalid token")
	}
	return uid, nil
}
