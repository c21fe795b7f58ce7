package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port                     string
	AllowedOrigins           []string
	LogLevel                 string
	DatabaseURL              string
	RedisURL                 string
	JWTSecret                string
	Environment              string
	DefaultApprovalThreshold int           // Used when a team has no threshold configured
	ExecutionTimeout         time.Duration // Upper bound on the external execution call
	ExecutorURL              string        // Multisig relay endpoint; empty disables dispatch
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                     getEnv("PORT", "8080"),
		AllowedOrigins:           parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		RedisURL:                 getEnv("REDIS_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		Environment:              getEnv("ENVIRONMENT", "production"),
		DefaultApprovalThreshold: getIntEnv("DEFAULT_APPROVAL_THRESHOLD", 2),
		ExecutionTimeout:         time.Duration(getIntEnv("EXECUTION_TIMEOUT_SECONDS", 15)) * time.Second,
		ExecutorURL:              getEnv("EXECUTOR_URL", ""),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
