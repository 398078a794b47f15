package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	purposeAccess = "access"
	purposeReset  = "password_reset"
)

// Claims defines the JWT claims we embed in our token.
type Claims struct {
	UserID  string `json:"sub"`
	Email   string `json:"email"`
	Role    Role   `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTManager manages JWT access token creation and validation.
type JWTManager struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// NewJWTManager creates a new JWT manager. Reset tokens live for resetTTL.
func NewJWTManager(secret string, ttl, resetTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: resetTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GenerateAccessToken creates a signed JWT for the given identity.
func (m *JWTManager) GenerateAccessToken(id Identity) (*Session, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	signed, err := m.sign(&Claims{
		UserID:  id.UserID,
		Email:   id.Email,
		Role:    id.Role,
		Purpose: purposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	if err != nil {
		return nil, err
	}

	return &Session{Identity: id, AccessToken: signed, ExpiresAt: expires}, nil
}

// GenerateResetToken creates a short-lived token that only authorizes a password change.
func (m *JWTManager) GenerateResetToken(userID, email string) (string, error) {
	now := m.now()
	return m.sign(&Claims{
		UserID:  userID,
		Email:   email,
		Purpose: purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.resetTTL)),
		},
	})
}

func (m *JWTManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

// ParseAndValidate validates an access token and returns its claims.
func (m *JWTManager) ParseAndValidate(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, purposeAccess)
}

// ParseResetToken validates a password reset token.
func (m *JWTManager) ParseResetToken(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, purposeReset)
}

func (m *JWTManager) parse(tokenStr, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid jwt token")
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", claims.Purpose, purpose)
	}

	return claims, nil
}
