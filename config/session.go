package config

import "time"

// SessionConfig contains session lifecycle configuration.
type SessionConfig struct {
	// RefreshMargin is how far before token expiry the watcher triggers a
	// silent refresh.
	RefreshMargin time.Duration `env:"REFRESH_MARGIN" envDefault:"5s"`
}

// Sanitize applies guardrails to session configuration.
func (c *SessionConfig) Sanitize() {
	if c.RefreshMargin <= 0 {
		c.RefreshMargin = 5 * time.Second
	}
}
