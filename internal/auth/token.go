// Package auth owns token issuance and verification for the API.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs and parses the HS256 bearer tokens the API hands out.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

const (
	issuer   = "ripple-api"
	audience = "ripple-client"

	// stateTTL bounds how long an OAuth redirect may stay in flight.
	stateTTL = 10 * time.Minute
)

// ErrInvalidToken covers tampered, malformed, and expired tokens alike;
// callers respond 401 without distinguishing.
var ErrInvalidToken = errors.New("invalid or expired token")

// NewTokenIssuer creates a TokenIssuer. ttl bounds session lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed session token for the given user.
func (t *TokenIssuer) Issue(userID uint, username string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := t.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      issuer,
		"aud":      audience,
		"exp":      now.Add(t.ttl).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      generateJTI(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates signature and expiry and returns the user ID embedded
// in the token. Any failure maps to ErrInvalidToken.
func (t *TokenIssuer) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}

// IssueOAuthState creates a short-lived signed state value for the OAuth
// redirect, so the callback can reject forged requests without server-side
// session storage.
func (t *TokenIssuer) IssueOAuthState(provider string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"purpose":  "oauth_state",
		"provider": provider,
		"exp":      now.Add(stateTTL).Unix(),
		"iat":      now.Unix(),
		"jti":      generateJTI(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// VerifyOAuthState checks a state value from the OAuth callback and
// returns the provider it was issued for.
func (t *TokenIssuer) VerifyOAuthState(state string) (string, error) {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "oauth_state" {
		return "", ErrInvalidToken
	}

	provider, ok := claims["provider"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return provider, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
