package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a hosted-auth access token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ErrNoSigningKey is returned when the shared secret is not configured.
// Verification fails closed: an empty key would otherwise accept any token
// signed with an empty secret.
var ErrNoSigningKey = errors.New("jwt signing key not configured")

// Parse validates an access token signed by the hosted auth service with
// the shared HS256 secret and returns its claims.
func Parse(tokenStr, key string) (Claims, error) {
	if key == "" {
		return Claims{}, ErrNoSigningKey
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Role != "authenticated" {
		return Claims{}, errors.New("role not permitted")
	}
	return *claims, nil
}
