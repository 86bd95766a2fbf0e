package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultPort          = 3000
	defaultStripeTimeout = 30 * time.Second
)

// Config holds everything the process reads from the environment.
// It is populated once at startup and validated before the server
// starts accepting connections.
type Config struct {
	// StripeAPIKey is the secret key used to authorize provider calls.
	StripeAPIKey string

	// Port is the HTTP listen port.
	Port int

	// StripeTimeout bounds a single outbound provider call.
	StripeTimeout time.Duration

	// LogLevel is one of debug, info, warn, error, off.
	LogLevel string

	// LogHTTPBodies enables verbose provider request/response logging.
	LogHTTPBodies bool
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	cfg := Config{
		StripeAPIKey:  os.Getenv("STRIPE_API_KEY"),
		Port:          defaultPort,
		StripeTimeout: defaultStripeTimeout,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogHTTPBodies: os.Getenv("LOG_HTTP_BODIES") == "true",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("STRIPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STRIPE_TIMEOUT %q: %w", v, err)
		}
		cfg.StripeTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	if c.StripeAPIKey == "" {
		return errors.New("STRIPE_API_KEY is not set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.StripeTimeout <= 0 {
		return errors.New("stripe timeout must be > 0")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
