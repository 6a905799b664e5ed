package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Storefront API client configuration
//   - pricing.go: Cart pricing constants
//   - storage.go: Durable state storage configuration
//   - session.go: Session lifecycle configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging, relaxed
	// validation). Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Storefront API client configuration
	API APIConfig `envPrefix:"API_"`

	// Cart pricing constants
	Pricing PricingConfig `envPrefix:"PRICING_"`

	// Durable state storage configuration
	Storage StorageConfig

	// Session lifecycle configuration
	Session SessionConfig `envPrefix:"SESSION_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Pricing.Sanitize()
	c.Session.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
