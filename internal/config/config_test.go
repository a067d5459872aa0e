package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IDENTITY_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, StoreBolt, cfg.StoreDriver)
	assert.Equal(t, GatewayPaystack, cfg.Gateway)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Empty(t, cfg.Paystack.SecretKey)
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.False(t, cfg.Dev())
}

func TestLoadRequiresIdentitySecret(t *testing.T) {
	t.Setenv("IDENTITY_JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "IDENTITY_JWT_SECRET")
}

func TestLoadPostgresNeedsDatabaseURL(t *testing.T) {
	t.Setenv("IDENTITY_JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/storefront")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("IDENTITY_JWT_SECRET", "s3cret")

	t.Setenv("PAYMENT_GATEWAY", "stripe")
	_, err := Load()
	assert.ErrorContains(t, err, "PAYMENT_GATEWAY")
	t.Setenv("PAYMENT_GATEWAY", "mock")

	t.Setenv("ACCESS_SWEEP_INTERVAL", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "ACCESS_SWEEP_INTERVAL")
	t.Setenv("ACCESS_SWEEP_INTERVAL", "5m")

	t.Setenv("PAYSTACK_BASE_URL", "http://127.0.0.1:9999/")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Paystack.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}
