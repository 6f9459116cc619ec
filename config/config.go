package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingPrivateKey is returned by Load when no token signing key is configured.
var ErrMissingPrivateKey = errors.New("FATAL ERROR: VIDLY_JWT_PRIVATE_KEY is not defined")

// Config holds everything the service reads from the environment
type Config struct {
	Port      string
	APIPrefix string

	JWTPrivateKey string
	TokenTTL      time.Duration
	BcryptCost    int

	DBDriver      string
	DBDSN         string
	MigrationsDir string

	CacheType     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit RateLimit
}

// RateLimit configures the per-client limiter on the credential endpoints
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Load reads the configuration from the environment, applying defaults.
// A missing signing key is a fatal configuration error.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "3000"),
		APIPrefix:     getEnv("API_PREFIX", "/api"),
		JWTPrivateKey: os.Getenv("VIDLY_JWT_PRIVATE_KEY"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:         getEnv("DB_DSN", "./vidly.db"),
		MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "./database/migrations"),
		CacheType:     getEnv("CACHE_TYPE", "memory"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.JWTPrivateKey == "" {
		return Config{}, ErrMissingPrivateKey
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("VIDLY_TOKEN_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("parse VIDLY_TOKEN_TTL: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		return Config{}, fmt.Errorf("parse BCRYPT_COST: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RateLimit.Enabled, err = strconv.ParseBool(getEnv("RATE_LIMIT_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_ENABLED: %w", err)
	}
	if cfg.RateLimit.RPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimit.Burst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "4")); err != nil {
		return Config{}, fmt.Errorf("parse RATE_LIMIT_BURST: %w", err)
	}

	switch cfg.DBDriver {
	case "sqlite3", "postgres", "mysql":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
