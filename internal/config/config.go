// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const devJWTSecret = "billsplit-dev-secret-change-me"

// Config holds every server setting.
type Config struct {
	Port        int
	DBDriver    string
	DBPath      string
	DatabaseURL string
	StaticPath  string

	JWTSecret string
	// DevJWTSecret is set when JWT_SECRET was missing and a built-in
	// development secret is in use.
	DevJWTSecret bool
	SessionTTL   time.Duration
	// SessionIdleTimeout is how long an unmodified session stays cached.
	SessionIdleTimeout time.Duration
	SweepInterval      time.Duration

	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	ExtractTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CurrencySymbol string
	LogLevel       string
	LogFormat      string
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads .env files (when present) and then the environment. Variables
// already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/billsplit.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StaticPath:     os.Getenv("STATIC_PATH"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_AI_API_KEY")),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		GeminiBaseURL:  os.Getenv("GEMINI_BASE_URL"),
		KafkaTopic:     os.Getenv("KAFKA_TOPIC"),
		CurrencySymbol: os.Getenv("CURRENCY_SYMBOL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.SessionIdleTimeout, err = time.ParseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(getEnv("SWEEP_INTERVAL", "5m")); err != nil || cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL %q", os.Getenv("SWEEP_INTERVAL"))
	}
	if cfg.ExtractTimeout, err = time.ParseDuration(getEnv("EXTRACT_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid EXTRACT_TIMEOUT: %w", err)
	}

	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
		cfg.DevJWTSecret = true
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
