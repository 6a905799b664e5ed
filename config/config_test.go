package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "http://localhost:5000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/api/auth/refresh", cfg.API.RefreshPath)

	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.NewFromFloat(0.08)))
	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(200)))
	assert.True(t, cfg.Pricing.FlatShippingRate.Equal(decimal.NewFromInt(15)))

	assert.Equal(t, StorageBackendFile, cfg.Storage.Backend)
	assert.Equal(t, ".storefront", cfg.Storage.File.Dir)
	assert.Equal(t, "storefront:", cfg.Storage.Redis.KeyPrefix)

	assert.Equal(t, 5*time.Second, cfg.Session.RefreshMargin)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://shop.example.com/")
	t.Setenv("PRICING_TAX_RATE", "0.2")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("STATE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("SESSION_REFRESH_MARGIN", "30s")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	// Sanitize trims the trailing slash.
	assert.Equal(t, "https://shop.example.com", cfg.API.BaseURL)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.NewFromFloat(0.2)))
	assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Session.RefreshMargin)
}

func TestStorageBackendUnmarshal(t *testing.T) {
	var b StorageBackend

	require.NoError(t, b.UnmarshalText([]byte("POSTGRES")))
	assert.Equal(t, StorageBackendPostgres, b)

	assert.Error(t, b.UnmarshalText([]byte("sqlite")))
}

func TestDBConfigDSN(t *testing.T) {
	cfg := DBConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "pw",
		Name:     "store",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://app:pw@db.internal:5433/store?sslmode=require", cfg.DSN())
}

func TestAPISanitizeGuardrails(t *testing.T) {
	cfg := APIConfig{
		BaseURL:     "  http://api.local/  ",
		Timeout:     -time.Second,
		RefreshPath: "api/auth/refresh",
	}
	cfg.Sanitize()

	assert.Equal(t, "http://api.local", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "/api/auth/refresh", cfg.RefreshPath)
}

func TestPricingSanitizeClampsNegatives(t *testing.T) {
	cfg := PricingConfig{
		TaxRate:               decimal.NewFromFloat(-0.1),
		FreeShippingThreshold: decimal.NewFromInt(-1),
		FlatShippingRate:      decimal.NewFromInt(-5),
	}
	cfg.Sanitize()

	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromFloat(0.08)))
	assert.True(t, cfg.FreeShippingThreshold.Equal(decimal.NewFromInt(200)))
	assert.True(t, cfg.FlatShippingRate.Equal(decimal.NewFromInt(15)))
}

func TestSessionSanitizeGuardsMargin(t *testing.T) {
	cfg := SessionConfig{RefreshMargin: 0}
	cfg.Sanitize()
	assert.Equal(t, 5*time.Second, cfg.RefreshMargin)
}

func TestDetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
