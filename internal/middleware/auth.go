package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gisvideo/backend/internal/contextkeys"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/handler"
	"github.com/rs/zerolog"
)

// TokenVerifier validates identity-provider tokens.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.IdentityClaims, error)
}

// Auth creates a bearer-token authentication middleware.
func Auth(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
				return
			}

			claims, err := verifier.VerifyToken(parts[1])
			if err != nil {
				msg := "invalid or expired token"
				if appErr, ok := domain.AsAppError(err); ok {
					msg = appErr.Message
				}
				handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores identity claims in ctx using typed keys.
func WithClaims(ctx context.Context, claims *domain.IdentityClaims) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserID, claims.Sub)
	ctx = context.WithValue(ctx, contextkeys.UserEmail, claims.Email)
	ctx = context.WithValue(ctx, contextkeys.UserName, claims.Name)
	ctx = context.WithValue(ctx, contextkeys.UserRole, claims.Role)

	l := zerolog.Ctx(ctx).With().Str("user_id", claims.Sub).Logger()
	return l.WithContext(ctx)
}
