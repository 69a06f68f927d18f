package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port      string
	Env       string
	RelayPath string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Logging
	LogLevel   string
	LogVerbose bool

	// Rate limiting
	RedisURL           string
	RateLimitPerMinute int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		RelayPath:          getEnvOrDefault("RELAY_PATH", "/api/v1/analyze-tone"),
		GeminiAPIKey:       mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogVerbose:         getEnvAsBoolOrDefault("LOG_VERBOSE", false),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
	}

	if !strings.HasPrefix(cfg.RelayPath, "/") {
		cfg.RelayPath = "/" + cfg.RelayPath
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
