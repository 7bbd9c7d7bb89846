// Package auth provides stateless identity for the API. Sessions are
// anonymous-first: a client asks for a session token once and presents it as
// a Bearer token afterwards. There are no passwords; the token itself is the
// account.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails signature or time checks.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and validates the JWT session tokens used by the API.
type JWTManager struct {
	secretKey string
	duration  time.Duration
}

// Claims is the custom JWT payload (user id + display name).
type Claims struct {
	UserID               string `json:"user_id"`
	DisplayName          string `json:"display_name,omitempty"`
	jwt.RegisteredClaims        // Includes ExpiresAt, IssuedAt, etc.
}

// NewJWTManager returns a configured JWTManager.
func NewJWTManager(secretKey string, duration time.Duration) *JWTManager {
	return &JWTManager{secretKey: secretKey, duration: duration}
}

// NewSession mints a token for a fresh anonymous user and returns the new
// user id alongside it.
func (m *JWTManager) NewSession(displayName string) (userID, token string, expiresAt time.Time, err error) {
	userID = uuid.NewString()
	token, expiresAt, err = m.GenerateToken(userID, displayName)
	return userID, token, expiresAt, err
}

// GenerateToken issues a signed session token for an existing user.
func (m *JWTManager) GenerateToken(userID, displayName string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.duration)

	claims := &Claims{
		UserID:      userID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyToken parses and validates a token and returns its claims.
func (m *JWTManager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
