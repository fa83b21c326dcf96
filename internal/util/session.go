package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateSessionToken mints the short-lived JWT that backs an admin
// dashboard session.
func GenerateSessionToken(secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateSessionToken checks the signature and expiry of an admin session
// token and returns its issue time.
func ValidateSessionToken(secret []byte, tokenString string) (time.Time, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Role != "admin" {
		return time.Time{}, errors.New("invalid session token")
	}
	return claims.IssuedAt.Time, nil
}
