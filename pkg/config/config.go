package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read through this package only.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Calendar refresh
	Scraper ScraperConfig

	// API surface
	API APIConfig

	// Documentation page
	Docs DocsConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// ScraperConfig holds calendar refresh configuration
type ScraperConfig struct {
	Enabled      bool
	ScheduleHour int // UTC hour of the daily refresh
	Timeout      time.Duration
	PastDays     int // how far back the generated window reaches
	FutureDays   int // how far forward the generated window reaches
}

// APIConfig holds API auth, CORS and rate limit configuration
type APIConfig struct {
	Keys        []string
	AuthEnabled bool
	CORSOrigins []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DocsConfig holds documentation page configuration
type DocsConfig struct {
	Password   string
	SessionTTL time.Duration
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Calendar refresh
		Scraper: ScraperConfig{
			Enabled:      getEnvAsBool("SCRAPER_ENABLED", true),
			ScheduleHour: getEnvAsInt("SCRAPER_SCHEDULE_HOUR", 6),
			Timeout:      getEnvAsDuration("SCRAPER_TIMEOUT", "30s"),
			PastDays:     getEnvAsInt("CALENDAR_PAST_DAYS", 30),
			FutureDays:   getEnvAsInt("CALENDAR_FUTURE_DAYS", 730),
		},

		// API surface
		API: APIConfig{
			Keys:              getEnvAsSlice("API_KEYS", nil),
			AuthEnabled:       getEnvAsBool("ENABLE_API_AUTH", false),
			CORSOrigins:       getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
			RateLimitEnabled:  getEnvAsBool("RATE_LIMIT_ENABLED", false),
			RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow:   getEnvAsDuration("RATE_LIMIT_PERIOD", "60s"),
		},

		// Documentation page
		Docs: DocsConfig{
			Password:   getEnv("DOCS_PASSWORD", "market2025"),
			SessionTTL: getEnvAsDuration("DOCS_SESSION_TTL", "24h"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scraper.ScheduleHour < 0 || c.Scraper.ScheduleHour > 23 {
		return fmt.Errorf("SCRAPER_SCHEDULE_HOUR must be between 0 and 23")
	}

	if c.API.AuthEnabled && len(c.API.Keys) == 0 {
		return fmt.Errorf("ENABLE_API_AUTH requires at least one API_KEYS entry")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
