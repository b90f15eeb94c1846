package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSessionToken is returned for a malformed, expired, or
// wrong-signature dashboard session token.
var ErrInvalidSessionToken = errors.New("security: invalid session token")

// sessionClaims identifies the admin dashboard user a session cookie
// belongs to, layered on top of the bearer-token gateway auth that remains
// the required mechanism for every other admin API caller.
type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies short-lived dashboard session cookies.
// The dashboard obtains one by presenting the bearer token once
// (POST /admin/api/session); the gateway's withAuth then accepts a valid
// session cookie in place of the bearer token on admin API requests (the
// /ws upgrade still requires the token).
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionIssuer derives a signing key from the gateway token so no
// separate secret needs provisioning; ttl bounds how long a dashboard login
// stays valid before the browser must re-authenticate.
func NewSessionIssuer(gatewayToken string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionIssuer{secret: []byte(gatewayToken), ttl: ttl}
}

// Issue signs a session token for userID.
func (s *SessionIssuer) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("security: session user id required")
	}
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a session token, returning the user id it was
// issued for.
func (s *SessionIssuer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidSessionToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.UserID) == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.UserID, nil
}
