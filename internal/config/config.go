package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration, loaded from the environment with
// sensible defaults. A .env file in the working directory is honored when
// present.
type Config struct {
	Port    string
	DataDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowOrigins []string

	CacheTTL           time.Duration
	IPLimitPerMin      int
	AnalyzeLimitPerMin int

	OutlierThreshold    float64
	ConfidenceThreshold float64

	EnableProfiling bool
}

// Load reads configuration from the environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded configuration from .env file")
	}

	return Config{
		Port:    getEnvOrDefault("PORT", "8080"),
		DataDir: getEnvOrDefault("DATA_DIR", "./data"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSAllowOrigins: []string{getEnvOrDefault("CORS_ALLOW_ORIGIN", "*")},

		CacheTTL:           getEnvDuration("CACHE_TTL", 15*time.Minute),
		IPLimitPerMin:      getEnvInt("RATE_LIMIT_IP_PER_MIN", 60),
		AnalyzeLimitPerMin: getEnvInt("RATE_LIMIT_ANALYZE_PER_MIN", 10),

		OutlierThreshold:    getEnvFloat("OUTLIER_THRESHOLD", 1.5),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.8),

		EnableProfiling: os.Getenv("ENABLE_PROFILING") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		slog.Warn("Invalid float in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}
