package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretMissing  = errors.New("token secret is not configured")
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

const DefaultTokenTTL = time.Hour

type UserClaim struct {
	ID string `json:"id"`
}

// Claims is the token payload: {"user":{"id":...}} plus exp/iat.
type Claims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

// TokenVerifier is what the auth middleware needs from a TokenManager.
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests to pin issuance and expiry.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for accountID that expires exactly ttl after issuance.
// Issuance is truncated to whole seconds so exp is representable.
func (m *TokenManager) Issue(accountID string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSecretMissing
	}
	if accountID == "" {
		return "", errors.New("account id is required")
	}

	issuedAt := m.now().Truncate(time.Second)
	claims := &Claims{
		User: UserClaim{ID: accountID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the account id carried by tokenString. The token stays valid
// up to and including its exp instant.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSecretMissing
	}
	if tokenString == "" {
		return "", ErrTokenMissing
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenSignature
		default:
			return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: missing exp", ErrTokenInvalid)
	}
	if m.now().After(claims.ExpiresAt.Time) {
		return "", ErrTokenExpired
	}
	if claims.User.ID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}

	return claims.User.ID, nil
}
