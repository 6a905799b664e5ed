package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects the durable state store implementation.
type StorageBackend string

const (
	// StorageBackendFile persists state as JSON files in a local directory.
	StorageBackendFile StorageBackend = "file"
	// StorageBackendRedis persists state in Redis (shared/server-side embedding).
	StorageBackendRedis StorageBackend = "redis"
	// StorageBackendPostgres persists state in a Postgres key-value table.
	StorageBackendPostgres StorageBackend = "postgres"
	// StorageBackendMemory keeps state in memory only (tests, ephemeral runs).
	StorageBackendMemory StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis", "postgres", "memory":
		*b = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: file, redis, postgres, memory)", v)
	}
}

// FileStateConfig contains file-backed state store configuration.
type FileStateConfig struct {
	// Dir is the directory holding one JSON file per state key.
	Dir string `env:"DIR" envDefault:".storefront"`
}

// RedisConfig contains Redis state store configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	// KeyPrefix namespaces state keys when the Redis instance is shared.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"storefront:"`
}

// DBConfig contains PostgreSQL state store configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"storefront"`
	Password string `env:"PASSWORD" envDefault:"storefront"`
	Name     string `env:"NAME"     envDefault:"storefront"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
}

// DSN returns the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// StorageConfig groups durable state storage configuration.
type StorageConfig struct {
	// Backend determines which state store adapter to use.
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`

	// File configuration (used when Backend=file).
	File FileStateConfig `envPrefix:"STATE_FILE_"`

	// Redis configuration (used when Backend=redis).
	Redis RedisConfig `envPrefix:"STATE_REDIS_"`

	// Postgres configuration (used when Backend=postgres).
	Postgres DBConfig `envPrefix:"STATE_DB_"`
}
