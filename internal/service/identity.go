package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityService verifies bearer tokens from the identity provider.
type IdentityService struct {
	secret []byte
}

func NewIdentityService(secret string) *IdentityService {
	return &IdentityService{secret: []byte(secret)}
}

// VerifyToken validates a JWT and returns its identity claims.
func (s *IdentityService) VerifyToken(tokenStr string) (*domain.IdentityClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrUnauthorized("session expired, please sign in again")
		}
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}

	out := &domain.IdentityClaims{
		Sub:   getClaimString(claims, "sub"),
		Email: getClaimString(claims, "email"),
		Name:  getClaimString(claims, "name"),
		Role:  getClaimString(claims, "role"),
	}
	if out.Sub == "" {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}
	return out, nil
}

// IssueToken signs a token for the given identity. Used by cmd/devtoken and tests.
func (s *IdentityService) IssueToken(c domain.IdentityClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   c.Sub,
		"email": c.Email,
		"name":  c.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	if c.Role != "" {
		claims["role"] = c.Role
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
