package service

import (
	"testing"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityRoundTrip(t *testing.T) {
	svc := NewIdentityService("s3cret")
	token, err := svc.IssueToken(domain.IdentityClaims{Sub: "u1", Email: "ama@example.com", Name: "Ama Mensah", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, &domain.IdentityClaims{Sub: "u1", Email: "ama@example.com", Name: "Ama Mensah", Role: "admin"}, claims)
}

func TestIdentityRejections(t *testing.T) {
	svc := NewIdentityService("s3cret")

	expired, err := svc.IssueToken(domain.IdentityClaims{Sub: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = svc.VerifyToken(expired)
	appErr := requireAppError(t, err, 401)
	assert.Equal(t, "session expired, please sign in again", appErr.Message)

	foreign, err := NewIdentityService("other").IssueToken(domain.IdentityClaims{Sub: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.VerifyToken(foreign)
	appErr = requireAppError(t, err, 401)
	assert.Equal(t, "invalid or expired token", appErr.Message)

	_, err = svc.VerifyToken("not-a-jwt")
	requireAppError(t, err, 401)

	anonymous, err := svc.IssueToken(domain.IdentityClaims{Email: "x@example.com"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.VerifyToken(anonymous)
	requireAppError(t, err, 401)
}
