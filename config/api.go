package config

import (
	"strings"
	"time"
)

// APIConfig contains storefront backend API client configuration.
type APIConfig struct {
	// BaseURL is the root of the storefront REST API.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000"`

	// Timeout bounds each outbound HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RefreshPath is the auth refresh endpoint, relative to BaseURL. The
	// request gateway must never retry this path on 401.
	RefreshPath string `env:"REFRESH_PATH" envDefault:"/api/auth/refresh"`
}

// Sanitize applies guardrails to API configuration.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RefreshPath == "" {
		c.RefreshPath = "/api/auth/refresh"
	}
	if !strings.HasPrefix(c.RefreshPath, "/") {
		c.RefreshPath = "/" + c.RefreshPath
	}
}
