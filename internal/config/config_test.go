package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT", "SESSION_STORE", "SESSION_TTL", "REDIS_DB", "API_RATE_LIMIT", "VIEWER_TZ", "LOG_DIR"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Local", cfg.ViewerTZ)
	assert.Empty(t, cfg.LogDir)
	assert.Equal(t, 10.0, cfg.APIRateLimit)
	assert.Equal(t, 20, cfg.APIRateBurst)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("COOKIE_SECURE", "yes")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.True(t, cfg.CookieSecure)

	redis := cfg.Redis()
	assert.Equal(t, "cache", redis.Host)
	assert.Equal(t, 2, redis.DB)
	assert.Equal(t, 30*time.Minute, redis.TTL)

	assert.Equal(t, 2.5, cfg.RateLimit().RequestsPerSecond)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("API_RATE_LIMIT", "-1")
	t.Setenv("SESSION_STORE", "memcached")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10.0, cfg.APIRateLimit)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
}
