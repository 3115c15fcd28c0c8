// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides settings for the remote authoritative store.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for the auth middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// RedisConfig provides settings for the reminder task queue.
type RedisConfig interface {
	GetRedisURL() string
	GetReminderQueueName() string
}

// SMTPConfig provides settings for notification email delivery.
type SMTPConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
}

// StoreConfig provides tuning for the write-behind entity store.
type StoreConfig interface {
	GetSyncMaxAttempts() int
	GetSyncBaseBackoff() time.Duration
	GetSyncRatePerSecond() float64
	GetReconcileInterval() time.Duration
}

// =============================================================================
// Config
// =============================================================================

// Config is the concrete configuration loaded from the environment. It
// implements all of the consumer interfaces above.
type Config struct {
	Env string

	HTTPAddr     string
	CORSAllowAll bool
	CORSOrigins  []string

	DatabaseURL string

	JWTAccessSecret string

	RedisURL          string
	ReminderQueueName string

	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromAddress string

	SyncMaxAttempts   int
	SyncBaseBackoff   time.Duration
	SyncRatePerSecond float64
	ReconcileInterval time.Duration
}

// Load reads configuration from the environment. A .env file is honored when
// present so local development needs no exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),

		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll: getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		RedisURL:          getEnv("REDIS_URL", ""),
		ReminderQueueName: getEnv("REMINDER_QUEUE", "reminders"),

		EmailEnabled:     getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "crm@localhost"),

		SyncMaxAttempts:   getEnvInt("SYNC_MAX_ATTEMPTS", 5),
		SyncBaseBackoff:   getEnvDuration("SYNC_BASE_BACKOFF", 500*time.Millisecond),
		SyncRatePerSecond: getEnvFloat("SYNC_RATE_PER_SECOND", 50),
		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 15*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetDatabaseURL() string    { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string     { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool   { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetReminderQueueName() string { return c.ReminderQueueName }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetSyncMaxAttempts() int            { return c.SyncMaxAttempts }
func (c *Config) GetSyncBaseBackoff() time.Duration  { return c.SyncBaseBackoff }
func (c *Config) GetSyncRatePerSecond() float64      { return c.SyncRatePerSecond }
func (c *Config) GetReconcileInterval() time.Duration { return c.ReconcileInterval }

// Helpers.

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
