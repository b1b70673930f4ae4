// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSecret is used when no signing secret is configured.
const DevSecret = "dev-insecure-secret-change"

type Config struct {
	// HTTP server
	Port string

	// Storage
	DataBackend   string
	DatabaseDSN   string
	DBAutoMigrate bool

	// Auth
	JWTSecret       string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration

	// Long-poll
	PollTimeout time.Duration

	// Change fan-out between instances (optional)
	AMQPURL      string
	AMQPExchange string

	LogLevel string
}

// LoadDotEnv seeds the environment from path without overwriting variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads the configuration from environment variables.
func Load() *Config {
	secret := getEnv("JWT_SECRET", getEnv("SECRET_KEY", ""))
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "postgres"),
		DatabaseDSN:   getEnv("DB_DSN", ""),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),

		JWTSecret:       secret,
		TokenTTL:        getEnvDuration("TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		PollTimeout: getEnvDuration("POLL_TIMEOUT", 30*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pfm.changes"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// UsesDevSecret reports whether no signing secret was configured.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == ""
}

// Secret returns the signing secret, falling back to DevSecret.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte(DevSecret)
	}
	return []byte(c.JWTSecret)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			errors = append(errors, "DB_DSN is required when using postgres backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [postgres memory]", c.DataBackend))
	}

	if c.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}

	if c.RefreshTokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid refresh token TTL %v: must be positive", c.RefreshTokenTTL))
	}

	if c.PollTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %v: must be at least 1 second", c.PollTimeout))
	} else if c.PollTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %v: must be at most 5 minutes", c.PollTimeout))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return defaultValue
	case "false", "0", "no":
		return false
	default:
		return true
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
