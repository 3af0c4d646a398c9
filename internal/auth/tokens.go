package auth

import (
	"time"

	"github.com/golang-jwt/jwt"

	"hostelx-service/internal/apperrors"
)

// TokenManager issues and validates the bearer tokens the API runs on.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user id.
func (m *TokenManager) Issue(userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// Validate parses a token and returns the authenticated user id.
func (m *TokenManager) Validate(tokenString string) (int, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Auth("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, apperrors.Auth("invalid token")
	}

	raw, ok := claims["user_id"].(float64)
	if !ok || raw == 0 {
		return 0, apperrors.Auth("invalid token claims")
	}
	return int(raw), nil
}
