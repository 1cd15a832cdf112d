// Package config loads engine configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full engine configuration.
type Config struct {
	// UserID identifies the signed-in user this engine instance serves.
	UserID string

	// DBPath is the SQLite database location.
	DBPath string

	API       APIConfig
	Log       LogConfig
	Scheduler SchedulerConfig
}

// APIConfig configures the progress service client.
type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig configures the periodic jobs.
type SchedulerConfig struct {
	NudgeInterval time.Duration
	RolloverAt    string
	SweepInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		UserID: os.Getenv("LEXIQUEST_USER_ID"),
		DBPath: getEnv("LEXIQUEST_DB_PATH", defaultDBPath()),
		API: APIConfig{
			BaseURL:           getEnv("LEXIQUEST_API_URL", "https://api.lexiquest.app"),
			Timeout:           getEnvDuration("LEXIQUEST_API_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getEnvFloat("LEXIQUEST_API_RPS", 5),
			Burst:             getEnvInt("LEXIQUEST_API_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LEXIQUEST_LOG_LEVEL", "info"),
			Format: getEnv("LEXIQUEST_LOG_FORMAT", "text"),
		},
		Scheduler: SchedulerConfig{
			NudgeInterval: getEnvDuration("LEXIQUEST_NUDGE_INTERVAL", 2*time.Minute),
			RolloverAt:    getEnv("LEXIQUEST_ROLLOVER_AT", "00:05"),
			SweepInterval: getEnvDuration("LEXIQUEST_SWEEP_INTERVAL", time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UserID == "" {
		return fmt.Errorf("config: LEXIQUEST_USER_ID is required")
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: LEXIQUEST_API_URL must not be empty")
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lexiquest.db"
	}
	return filepath.Join(home, ".lexiquest", "progress.db")
}

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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
