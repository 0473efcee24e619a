// Package config loads and validates environment-based configuration.
package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBPath string

	// AMQP. An empty URL disables queued alert delivery; alerts are then
	// only surfaced in the web UI and logs.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Default identity. Authentication is out of scope; every request
	// acts as this single configured user.
	DefaultUsername  string
	DefaultUserEmail string

	// Worker
	AlertRecipient string

	// View caching
	CacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:   getEnv("PORT", "8081"),
		DBPath: getEnv("DB_PATH", "./data/outlay.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "outlay"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		DefaultUsername:  getEnv("DEFAULT_USERNAME", "testuser"),
		DefaultUserEmail: getEnv("DEFAULT_USER_EMAIL", "test@example.com"),

		AlertRecipient: getEnv("ALERT_RECIPIENT", "user@example.com"),

		CacheTTL: getEnvDuration("CACHE_TTL", 30*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	} else {
		dir := filepath.Dir(c.DBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
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
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DefaultUsername == "" {
		errors = append(errors, "default username cannot be empty")
	}
	if _, err := mail.ParseAddress(c.DefaultUserEmail); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default user email '%s'", c.DefaultUserEmail))
	}
	if _, err := mail.ParseAddress(c.AlertRecipient); err != nil {
		errors = append(errors, fmt.Sprintf("invalid alert recipient '%s'", c.AlertRecipient))
	}

	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 1 hour", c.CacheTTL))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
