package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	APIBaseURL     string
	SessionFile    string
	PageSize       int
	HTTPTimeout    time.Duration // 0 means no automatic timeout
	TelemetryRate  float64       // events per second; 0 disables the cap
	TelemetryBurst int
	LogLevel       string
	LogFormat      string
	Environment    string // development, staging, production
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:5000/api"),
		SessionFile:    getEnv("SESSION_FILE", defaultSessionFile()),
		PageSize:       getEnvInt("PAGE_SIZE", 12),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 0),
		TelemetryRate:  getEnvFloat("TELEMETRY_RATE", 10),
		TelemetryBurst: getEnvInt("TELEMETRY_BURST", 20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		Environment:    getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

// Validate checks configuration for correctness
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL (got %q)", c.APIBaseURL)
	}

	if c.IsProduction() && parsed.Scheme != "https" {
		log.Println("WARNING: API_BASE_URL should use HTTPS in production")
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100 (got %d)", c.PageSize)
	}

	if c.SessionFile == "" {
		return fmt.Errorf("SESSION_FILE must not be empty")
	}

	if c.TelemetryRate < 0 {
		return fmt.Errorf("TELEMETRY_RATE must not be negative (got %g)", c.TelemetryRate)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == ""
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopfront-session.json"
	}
	return filepath.Join(home, ".shopfront", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %g", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %s", key, raw, defaultValue)
		return defaultValue
	}
	return value
}
