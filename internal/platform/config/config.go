package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr        string
	Env         string // development | production | test
	DatabaseURL string
	RedisURL    string

	JWTSecret  string
	JWTExpires time.Duration

	BcryptCost int

	LogLevel string

	RateLimitDisabled bool
}

// Production reports whether error details must stay out of responses.
func (c Config) Production() bool {
	return c.Env == "production"
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:        getenv("EXPEDIENTES_ADDR", ":3000"),
		Env:         getenv("APP_ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   getenv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpires:  getduration("JWT_EXPIRES", time.Hour),
		BcryptCost:  getint("BCRYPT_COST", 10),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		RateLimitDisabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
