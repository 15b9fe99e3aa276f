// Package config loads the tracker configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrAPIURLMissing = errors.New("environment variable API_URL must be set")

// Config holds all application configuration.
type Config struct {
	APIURL           *url.URL
	Port             int
	GinMode          string
	CORSAllowOrigins []string // Unset means no CORS headers are sent
	EnablePprof      bool
	Database         DatabaseConfig
	RedisURL         string // Snapshots are cached in redis when set
	APIKey           string // Requests to /v1 need this in the X-API-Key header when set
	MaxMonthsAhead   *int   // How far the month navigation may go beyond the current month, nil for unbounded
	CurrencySymbol   string
	ShutdownTimeout  time.Duration
}

// DatabaseConfig selects the database. PostgreSQL is used when Host is set,
// the SQLite file at Path otherwise.
type DatabaseConfig struct {
	Path     string
	Host     string
	User     string
	Password string
	Name     string
}

// Postgres reports whether PostgreSQL is configured.
func (c DatabaseConfig) Postgres() bool {
	return c.Host != ""
}

// Load loads configuration from a .env file, if present, and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiURL, ok := os.LookupEnv("API_URL")
	if !ok {
		return nil, ErrAPIURLMissing
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("environment variable API_URL must be a valid URL: %w", err)
	}

	cfg := &Config{
		APIURL:      u,
		Port:        getEnvAsInt("PORT", 8080),
		GinMode:     getEnv("GIN_MODE", "release"),
		EnablePprof: getEnvAsBool("ENABLE_PPROF", false),
		Database: DatabaseConfig{
			Path:     getEnv("DB_PATH", "data/tracker.db"),
			Host:     getEnv("DB_HOST", ""),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
		},
		RedisURL:        getEnv("REDIS_URL", ""),
		APIKey:          getEnv("API_KEY", ""),
		CurrencySymbol:  getEnv("CURRENCY_SYMBOL", "£"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if origins, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		cfg.CORSAllowOrigins = strings.Fields(origins)
	}

	if months, ok := os.LookupEnv("MAX_MONTHS_AHEAD"); ok {
		m, err := strconv.Atoi(months)
		if err != nil || m < 0 {
			return nil, fmt.Errorf("environment variable MAX_MONTHS_AHEAD must be a non-negative number, is %q", months)
		}
		cfg.MaxMonthsAhead = &m
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
