// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ProviderNames lists the AI providers that can be configured, in the
// order they are documented.
var ProviderNames = []string{"workersai", "openai", "gemini", "claude", "mistral"}

// AIProvider holds the settings of one AI provider.
type AIProvider struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host    string
	Port    string
	Env     string // "development", "production", "testing"
	Name    string // reported by the liveness endpoint
	SiteURL string // absolute base for feed links

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache). Empty host disables it.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// AI provider settings
	AIProvider          string
	AIProviders         map[string]AIProvider
	CloudflareAccountID string

	// Pipelines
	PostScheduleInterval time.Duration // 0 disables the periodic trigger
	PostScheduleAttempts int
	CheckpointTTL        time.Duration

	// HTTP gateway
	RateLimitPerMinute int
	TrustProxyHeaders  bool // key rate limits on X-Real-IP / X-Forwarded-For

	// S3-compatible export bucket
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode or a value cannot be parsed.
func Load() (*Config, error) {
	cfg := &Config{
		Host:    envOrDefault("APP_HOST", "0.0.0.0"),
		Port:    envOrDefault("APP_PORT", "8080"),
		Env:     envOrDefault("APP_ENV", "development"),
		Name:    envOrDefault("APP_NAME", "yorick"),
		SiteURL: envOrDefault("SITE_URL", "http://localhost:8080"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "yorick"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "yorick"),

		ValkeyHost:     os.Getenv("VALKEY_HOST"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		AIProvider:          envOrDefault("AI_PROVIDER", "workersai"),
		AIProviders:         make(map[string]AIProvider, len(ProviderNames)),
		CloudflareAccountID: os.Getenv("CLOUDFLARE_ACCOUNT_ID"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "yorick"),
	}

	for _, name := range ProviderNames {
		cfg.AIProviders[name] = AIProvider{
			APIKey:  os.Getenv(providerKeyEnv(name)),
			Model:   os.Getenv(envPrefix(name) + "_MODEL"),
			BaseURL: os.Getenv(envPrefix(name) + "_BASE_URL"),
		}
	}

	var err error
	if cfg.PostScheduleInterval, err = durationOrDefault("POST_SCHEDULE_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CheckpointTTL, err = durationOrDefault("CHECKPOINT_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PostScheduleAttempts, err = intOrDefault("POST_SCHEDULE_ATTEMPTS", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = intOrDefault("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.TrustProxyHeaders, err = boolOrDefault("TRUST_PROXY_HEADERS", false); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// envPrefix maps a provider name to its environment variable prefix.
func envPrefix(name string) string {
	switch name {
	case "workersai":
		return "WORKERSAI"
	case "openai":
		return "OPENAI"
	case "gemini":
		return "GEMINI"
	case "claude":
		return "CLAUDE"
	case "mistral":
		return "MISTRAL"
	}
	return ""
}

// providerKeyEnv names the credential variable. Workers AI takes a
// Cloudflare API token.
func providerKeyEnv(name string) string {
	if name == "workersai" {
		return "CLOUDFLARE_API_TOKEN"
	}
	return envPrefix(name) + "_API_KEY"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
