// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"inkwell/internal/content"
)

// Backend names the store implementation selected by STORE_URL.
type Backend string

const (
	// BackendPostgres talks to PostgreSQL directly (postgres:// or postgresql://).
	BackendPostgres Backend = "postgres"
	// BackendREST talks to a hosted database service over HTTP(S).
	BackendREST Backend = "rest"
	// BackendMemory keeps everything in process memory (memory://).
	BackendMemory Backend = "memory"
)

// ErrMissingStore is returned when STORE_URL or STORE_KEY is unset.
var ErrMissingStore = errors.New("STORE_URL and STORE_KEY must be set")

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string
	Port     string
	Env      string // "development", "production", "testing"
	LogLevel slog.Level

	// Content store
	StoreURL string
	StoreKey string
	Backend  Backend

	// Valkey (Redis-compatible session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for cover images
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Origins allowed to call the API from a browser.
	CORSOrigins []string

	// Deadline of each best-effort view-count increment.
	ViewCountTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A missing store URL or key is an
// error in every environment.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StoreURL: os.Getenv("STORE_URL"),
		StoreKey: os.Getenv("STORE_KEY"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "inkwell-covers"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		CORSOrigins: splitList(envOrDefault("CORS_ORIGINS", "http://localhost:5173")),
	}

	if cfg.StoreURL == "" || cfg.StoreKey == "" {
		return nil, ErrMissingStore
	}

	backend, err := backendFor(cfg.StoreURL)
	if err != nil {
		return nil, err
	}
	cfg.Backend = backend

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg.ViewCountTimeout, err = time.ParseDuration(envOrDefault("VIEW_COUNT_TIMEOUT", content.DefaultViewCountTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("VIEW_COUNT_TIMEOUT: %w", err)
	}
	if cfg.ViewCountTimeout <= 0 {
		return nil, fmt.Errorf("VIEW_COUNT_TIMEOUT must be positive")
	}

	if cfg.IsProduction() && cfg.Backend == BackendMemory {
		return nil, fmt.Errorf("the memory store cannot be used in production")
	}

	return cfg, nil
}

func backendFor(storeURL string) (Backend, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return "", fmt.Errorf("STORE_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "http", "https":
		return BackendREST, nil
	case "memory":
		return BackendMemory, nil
	}
	return "", fmt.Errorf("STORE_URL: unsupported scheme %q", u.Scheme)
}

// DSN returns the PostgreSQL connection string: STORE_URL with STORE_KEY
// as the password.
func (c *Config) DSN() string {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return c.StoreURL
	}
	user := "inkwell"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.StoreKey)
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
