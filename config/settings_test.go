package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "LANGUAGE_API_ENDPOINT", "LANGUAGE_API_TIMEOUT",
		"LANGUAGE_API_MAX_ATTEMPTS", "SESSION_TTL", "SUBMIT_WAIT", "VALKEY_INIT_ADDRESS",
		"RATE_LIMIT_PER_MINUTE", "KAFKA_BROKER", "KAFKA_TONE_TOPIC", "TALLY_TABLE_NAME", "AWS_REGION",
	} {
		t.Setenv(key, "")
	}

	s := Load()
	assert.Equal(t, "dev", s.Env)
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, DEFAULT_LANGUAGE_API_ENDPOINT, s.Language.Endpoint)
	assert.Equal(t, time.Duration(0), s.Language.Timeout)
	assert.Equal(t, 1, s.Language.MaxAttempts)
	assert.Equal(t, 30*time.Minute, s.SessionTTL)
	assert.Equal(t, 15*time.Second, s.SubmitWait)
	assert.Equal(t, 20, s.RateLimit)
	assert.Equal(t, "tone-results", s.KafkaTopic)
	assert.Equal(t, "us-west-2", s.Tallies.AWSRegion)
	assert.False(t, s.Valkey.Enabled())
	assert.False(t, s.Tallies.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LANGUAGE_API_TIMEOUT", "5s")
	t.Setenv("LANGUAGE_API_MAX_ATTEMPTS", "3")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_TLS", "true")
	t.Setenv("TALLY_TABLE_NAME", "ToneTallies")

	s := Load()
	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, 5*time.Second, s.Language.Timeout)
	assert.Equal(t, 3, s.Language.MaxAttempts)
	assert.True(t, s.Valkey.Enabled())
	assert.True(t, s.Valkey.UseTLS)
	assert.True(t, s.Tallies.Enabled())
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("LOG_LEVEL", "chatty")

	s := Load()
	assert.Equal(t, 20, s.RateLimit)
	assert.Equal(t, 30*time.Minute, s.SessionTTL)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
}
