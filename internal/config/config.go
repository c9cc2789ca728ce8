// Package config reads the server settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/ratelimit"
	"github.com/dharmasatrya/flightops/internal/session"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Port         string
	APIBaseURL   string
	APITimeout   time.Duration
	FetchTimeout time.Duration

	SessionStore  string
	SessionTTL    time.Duration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CookieSecure  bool

	ViewerTZ string
	LogLevel string
	LogDir   string

	APIRateLimit float64
	APIRateBurst int
}

func Load() Config {
	redis := session.DefaultRedisConfig()
	limits := ratelimit.DefaultConfig()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		APIBaseURL:   getEnv("API_BASE_URL", apiclient.DefaultBaseURL),
		APITimeout:   getEnvDuration("API_TIMEOUT", 10*time.Second),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		SessionStore:  getEnv("SESSION_STORE", StoreMemory),
		SessionTTL:    getEnvDuration("SESSION_TTL", redis.TTL),
		RedisHost:     getEnv("REDIS_HOST", redis.Host),
		RedisPort:     getEnv("REDIS_PORT", redis.Port),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", redis.DB),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),

		ViewerTZ: getEnv("VIEWER_TZ", "Local"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", ""),

		APIRateLimit: getEnvFloat("API_RATE_LIMIT", limits.RequestsPerSecond),
		APIRateBurst: getEnvInt("API_RATE_BURST", limits.BurstSize),
	}

	if cfg.SessionStore != StoreRedis {
		cfg.SessionStore = StoreMemory
	}
	return cfg
}

func (c Config) Redis() session.RedisConfig {
	return session.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		TTL:      c.SessionTTL,
	}
}

func (c Config) RateLimit() ratelimit.RateLimitConfig {
	return ratelimit.RateLimitConfig{
		RequestsPerSecond: c.APIRateLimit,
		BurstSize:         c.APIRateBurst,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
