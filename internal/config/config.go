package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Ledger    LedgerConfig
	Quotes    QuotesConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LedgerConfig selects how buy reversals treat the average cost.
type LedgerConfig struct {
	ReverseMode ledger.ReverseMode
}

// QuotesConfig describes where market prices come from and how they are cached.
type QuotesConfig struct {
	Source        string // "yahoo" or "file"
	File          string
	SymbolSuffix  string // appended to instrument codes for Yahoo, e.g. ".SA"
	CacheTTL      time.Duration
	RatePerSecond float64
	Burst         int
	RedisURL      string // optional, enables the shared cache
}

// SchedulerConfig controls the periodic price refresh.
type SchedulerConfig struct {
	Enabled         bool
	RefreshSchedule string // standard 5-field cron spec
	StaleAfter      time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	reverseMode, err := ledger.ParseReverseMode(getEnv("COST_BASIS_REVERSAL", string(ledger.ReverseModeReplay)))
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("QUOTES_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	staleAfter, err := getDuration("STALE_AFTER", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	rate, err := strconv.ParseFloat(getEnv("QUOTES_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTES_RATE_PER_SECOND: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("QUOTES_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTES_BURST: %w", err)
	}
	schedulerEnabled, err := strconv.ParseBool(getEnv("REFRESH_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_ENABLED: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_rentability.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Ledger: LedgerConfig{
			ReverseMode: reverseMode,
		},
		Quotes: QuotesConfig{
			Source:        strings.ToLower(getEnv("QUOTES_SOURCE", "file")),
			File:          getEnv("QUOTES_FILE", "./data/quotes.json"),
			SymbolSuffix:  getEnv("QUOTES_SYMBOL_SUFFIX", ".SA"),
			CacheTTL:      cacheTTL,
			RatePerSecond: rate,
			Burst:         burst,
			RedisURL:      os.Getenv("REDIS_URL"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         schedulerEnabled,
			RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 * * * *"),
			StaleAfter:      staleAfter,
		},
	}

	if config.Quotes.Source != "file" && config.Quotes.Source != "yahoo" {
		return nil, fmt.Errorf("invalid QUOTES_SOURCE %q: expected file or yahoo", config.Quotes.Source)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
