// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zapponejosh/ethiocal/internal/calendar"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file holding custom holidays

	// Authentication
	APIKey string // API key for the holiday admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Rate limiting (per client IP)
	RateLimitRPS   float64 // sustained requests per second, 0 disables
	RateLimitBurst int     // bucket size

	// Metrics
	MetricsEnabled bool // expose /metrics

	// Defaults for requests that don't name a calendar or style
	DefaultCalendar string // gregorian, ethiopian
	DefaultStyle    string // short, long, amharic
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables, after loading a
// .env file if one exists. Malformed numbers and booleans fall back to
// their defaults; out-of-range values are rejected by Validate.
func Load() (*Config, error) {
	// Missing .env is normal outside development
	_ = godotenv.Load()

	cfg := &Config{
		Port:         envOr("PORT", 8080, strconv.Atoi),
		Env:          envOr("ENV", EnvDevelopment, asString),
		DatabasePath: envOr("DATABASE_PATH", "./data/ethiocal.db", asString),
		APIKey:       envOr("API_KEY", "", asString),

		LogLevel:  envOr("LOG_LEVEL", "info", asLower),
		LogFormat: envOr("LOG_FORMAT", "text", asLower),

		RateLimitRPS:   envOr("RATE_LIMIT_RPS", 10.0, parseFloat),
		RateLimitBurst: envOr("RATE_LIMIT_BURST", 20, strconv.Atoi),

		MetricsEnabled: envOr("METRICS_ENABLED", true, strconv.ParseBool),

		DefaultCalendar: envOr("DEFAULT_CALENDAR", "ethiopian", asLower),
		DefaultStyle:    envOr("DEFAULT_STYLE", "long", asLower),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// Holidays can be edited without a key in development
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is on, got %d", c.RateLimitBurst))
	}

	if _, err := calendar.ParseCalendarType(c.DefaultCalendar); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_CALENDAR: %w", err))
	}
	if _, err := calendar.ParseStyle(c.DefaultStyle); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_STYLE: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// RateLimitEnabled reports whether requests are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

// envOr reads key with parse, returning def when the variable is unset,
// empty, or does not parse.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func asString(s string) (string, error) { return s, nil }

func asLower(s string) (string, error) { return strings.ToLower(s), nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
