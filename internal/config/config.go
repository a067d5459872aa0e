package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreBolt     = "bolt"
	StorePostgres = "postgres"
)

// Payment gateways.
const (
	GatewayPaystack = "paystack"
	GatewayMock     = "mock"
)

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string // trace|debug|info|warn|error
	Format string // json|console
}

// PaystackConfig holds the gateway keys. SecretKey never leaves the server.
type PaystackConfig struct {
	SecretKey string
	PublicKey string
	BaseURL   string
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port           int
	Env            string
	IdentitySecret string
	StoreDriver    string
	BoltPath       string
	DatabaseURL    string
	Gateway        string
	Paystack       PaystackConfig
	RedisURL       string
	RedisPassword  string
	CORSOrigins    []string
	CatalogFile    string
	SweepInterval  time.Duration
	Log            LogConfig
}

// Dev reports whether the service runs in development mode.
func (c *Config) Dev() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("PORT must be a positive integer")
	}

	identitySecret := getEnv("IDENTITY_JWT_SECRET", "")
	if identitySecret == "" {
		return nil, fmt.Errorf("IDENTITY_JWT_SECRET is required")
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", StoreBolt))
	dbURL := getEnv("DATABASE_URL", "")
	switch driver {
	case StoreBolt:
	case StorePostgres:
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreBolt, StorePostgres, driver)
	}

	gateway := strings.ToLower(getEnv("PAYMENT_GATEWAY", GatewayPaystack))
	if gateway != GatewayPaystack && gateway != GatewayMock {
		return nil, fmt.Errorf("PAYMENT_GATEWAY must be %q or %q, got %q", GatewayPaystack, GatewayMock, gateway)
	}

	sweep, err := time.ParseDuration(getEnv("ACCESS_SWEEP_INTERVAL", "0s"))
	if err != nil || sweep < 0 {
		return nil, fmt.Errorf("ACCESS_SWEEP_INTERVAL must be a non-negative duration")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5000,http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:           port,
		Env:            getEnv("APP_ENV", "production"),
		IdentitySecret: identitySecret,
		StoreDriver:    driver,
		BoltPath:       getEnv("BOLT_PATH", "data/storefront.db"),
		DatabaseURL:    dbURL,
		Gateway:        gateway,
		Paystack: PaystackConfig{
			// Optional: verification reports "not configured" without it.
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			PublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
			BaseURL:   strings.TrimRight(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
		},
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CORSOrigins:   origins,
		CatalogFile:   getEnv("CATALOG_FILE", ""),
		SweepInterval: sweep,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
