package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64

	SerperAPIKey string

	OracleAPIKey  string
	OracleBaseURL string
	OracleModel   string

	BrowserFetchEnabled bool
	FetchTimeout        time.Duration
	FetchWorkers        int
}

// Load reads configuration from the environment with sensible defaults.
// Only SERPER_API_KEY is required; the caller decides how to fail.
func Load() *Config {
	return &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),

		SerperAPIKey: os.Getenv("SERPER_API_KEY"),

		OracleAPIKey:  os.Getenv("ORACLE_API_KEY"),
		OracleBaseURL: getEnv("ORACLE_BASE_URL", ""),
		OracleModel:   getEnv("ORACLE_MODEL", "gpt-4o-mini"),

		BrowserFetchEnabled: getEnvBool("BROWSER_FETCH_ENABLED", false),
		FetchTimeout:        getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchWorkers:        getEnvInt("FETCH_WORKERS", 4),
	}
}

// OracleEnabled reports whether the spec oracle has credentials.
func (c *Config) OracleEnabled() bool {
	return c.OracleAPIKey != ""
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
