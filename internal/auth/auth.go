// Package auth issues and verifies the bearer tokens used by the
// owner-scoped API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the scheme reported alongside issued tokens.
const TokenType = "bearer"

// ErrInvalidToken is returned when a token fails signature or claims
// validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated user identity inside a JWT.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed HS256 token for the given user.
func IssueToken(secret string, ttl time.Duration, userID uint) (string, error) {
	if secret == "" {
		return "", errors.New("token secret cannot be empty")
	}

	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken parses a token string and returns its claims when the
// signature and expiry are valid.
func VerifyToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
