package config

import (
	"os"
	"time"
)

// Config holds all server configuration, read from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	JWTSecret     string

	// CleanupInterval is how often the in-process sweeper runs. Zero
	// disables it (an external scheduler hits /internal/cleanup instead).
	CleanupInterval time.Duration
}

// Load reads the configuration from the environment with defaults.
func Load() *Config {
	return &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		MongoURI:        getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnvOrDefault("MONGO_DATABASE", "itoparty"),
		RedisAddr:       getEnvOrDefault("REDIS_URI", "localhost:6379"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", "super-secret-key-change-in-production"),
		CleanupInterval: getDurationOrDefault("CLEANUP_INTERVAL", time.Hour),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
