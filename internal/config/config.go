// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir         string // Base directory for the databases, always absolute
	Port            int
	LogLevel        string
	DevMode         bool
	CORSOrigins     string // comma-separated allowed origins; "*" for any
	SnapshotCron    string // cron schedule for the nightly position snapshot
	RateLimitPerSec int    // API request budget per second per process
	RateLimitBurst  int
}

// Load reads configuration from environment variables, with .env support.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("RECKONER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		SnapshotCron:    getEnv("SNAPSHOT_CRON", "30 23 * * *"),
		RateLimitPerSec: getEnvAsInt("RATE_LIMIT_PER_SEC", 50),
		RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 100),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RateLimitPerSec <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d", c.RateLimitPerSec)
	}
	return nil
}

// LedgerDBPath returns the path of the append-only transaction database.
func (c *Config) LedgerDBPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// PortfolioDBPath returns the path of the derived-data database.
func (c *Config) PortfolioDBPath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
