package config

import (
	"errors"
	"os"
	"time"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// Config holds the app server settings.
type Config struct {
	ServerPort     string
	StorageBackend string
	DatabaseURL    string
	JWTSecret      string
	JWTExpiry      time.Duration

	ERPNextURL       string
	ERPNextAPIKey    string
	ERPNextAPISecret string
	ERPNextTimeout   time.Duration
}

func LoadConfig() (*Config, error) {
	expiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "24h"))
	if err != nil {
		return nil, errors.New("invalid JWT_EXPIRY format")
	}
	timeout, err := time.ParseDuration(getEnv("ERPNEXT_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.New("invalid ERPNEXT_TIMEOUT format")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		StorageBackend:   getEnv("STORAGE_BACKEND", StorageBackendPostgres),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTExpiry:        expiry,
		ERPNextURL:       getEnv("ERPNEXT_URL", "https://demo.erpnext.com"),
		ERPNextAPIKey:    os.Getenv("ERPNEXT_API_KEY"),
		ERPNextAPISecret: os.Getenv("ERPNEXT_API_SECRET"),
		ERPNextTimeout:   timeout,
	}

	// Validate required fields
	if cfg.StorageBackend != StorageBackendPostgres && cfg.StorageBackend != StorageBackendMemory {
		return nil, errors.New("STORAGE_BACKEND must be postgres or memory")
	}
	if cfg.StorageBackend == StorageBackendPostgres && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// EdgeConfig holds the offline edge proxy settings.
type EdgeConfig struct {
	EdgePort        string
	UpstreamURL     string
	RedisURL        string
	CacheGeneration string
}

func LoadEdgeConfig() (*EdgeConfig, error) {
	cfg := &EdgeConfig{
		EdgePort:        getEnv("EDGE_PORT", "8081"),
		UpstreamURL:     getEnv("UPSTREAM_URL", "http://localhost:8080"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CacheGeneration: getEnv("CACHE_GENERATION", "mobilerp-v1"),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
