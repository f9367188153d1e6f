package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig holds token verification settings
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JWTValidator verifies bearer tokens and extracts the subject claim.
// Issuing tokens is someone else's job; this only answers "who is calling".
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator creates a validator for HS256-signed tokens
func NewJWTValidator(config JWTConfig) (*JWTValidator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	return &JWTValidator{config: config}, nil
}

// Validate parses and verifies a token, returning the subject as the user id
func (v *JWTValidator) Validate(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.config.SecretKey), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}
