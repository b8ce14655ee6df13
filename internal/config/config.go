// Package config provides environment-driven configuration for auditlens.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Deployment environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// User directory backends.
const (
	UserStorePostgres = "postgres"
	UserStoreRedis    = "redis"
)

// Config holds all application configuration values.
type Config struct {
	DatabaseURL          Secret
	Port                 string
	ListenHost           string
	MetricsPort          string
	CORSOrigins          []string
	LogLevel             string
	Environment          string
	RequestTimeout       time.Duration
	DashboardConcurrency int
	ExportMaxRecords     int
	AuditQueueSize       int
	DBMaxConns           int
	UserStore            string
	RedisURL             Secret
}

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3040"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort: envOrDefault("METRICS_PORT", "9092"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		Environment: strings.ToLower(envOrDefault("APP_ENV", EnvProduction)),
		UserStore:   strings.ToLower(envOrDefault("USER_STORE", UserStorePostgres)),
		RedisURL:    Secret(envOrDefault("REDIS_URL", "")),
	}

	timeout, err := time.ParseDuration(envOrDefault("REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout < time.Second || timeout > 5*time.Minute {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be a duration between 1s and 5m")
	}
	cfg.RequestTimeout = timeout

	if cfg.DashboardConcurrency, err = intInRange("DASHBOARD_CONCURRENCY", "8", 1, 32); err != nil {
		return nil, err
	}

	if cfg.ExportMaxRecords, err = intInRange("EXPORT_MAX_RECORDS", "10000", 1, 10000); err != nil {
		return nil, err
	}

	if cfg.AuditQueueSize, err = intInRange("AUDIT_QUEUE_SIZE", "1000", 1, 100000); err != nil {
		return nil, err
	}

	if cfg.DBMaxConns, err = intInRange("DB_MAX_CONNS", "20", 2, 200); err != nil {
		return nil, err
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the API listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the Prometheus listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// IsProduction reports whether internal error details must be withheld from responses.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func intInRange(key, fallback string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
