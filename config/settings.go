package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const DEFAULT_LANGUAGE_API_ENDPOINT = "https://language.googleapis.com/v1/documents:analyzeSentiment"

// Settings is the full runtime configuration read from the environment.
type Settings struct {
	Env      string
	Port     string
	LogLevel slog.Level

	Language    LanguageSettings
	SessionTTL  time.Duration
	SubmitWait  time.Duration
	Valkey      ValkeySettings
	RateLimit   int
	KafkaBroker string
	KafkaTopic  string
	Tallies     TallySettings
}

type LanguageSettings struct {
	Endpoint    string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
	MaxAttempts int
}

type ValkeySettings struct {
	Address  string
	Password string
	UseTLS   bool
}

type TallySettings struct {
	TableName   string
	AWSRegion   string
	AWSEndpoint string
}

func (v ValkeySettings) Enabled() bool { return v.Address != "" }

func (t TallySettings) Enabled() bool { return t.TableName != "" }

func Load() Settings {
	return Settings{
		Env:      getEnv("APP_ENV", "dev"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getLevel("LOG_LEVEL", slog.LevelInfo),
		Language: LanguageSettings{
			Endpoint:    getEnv("LANGUAGE_API_ENDPOINT", DEFAULT_LANGUAGE_API_ENDPOINT),
			APIKey:      os.Getenv("GOOGLE_CLOUD_API_KEY"),
			AccessToken: os.Getenv("GOOGLE_CLOUD_ACCESS_TOKEN"),
			Timeout:     getDuration("LANGUAGE_API_TIMEOUT", 0),
			MaxAttempts: getInt("LANGUAGE_API_MAX_ATTEMPTS", 1),
		},
		SessionTTL: getDuration("SESSION_TTL", 30*time.Minute),
		SubmitWait: getDuration("SUBMIT_WAIT", 15*time.Second),
		Valkey: ValkeySettings{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			UseTLS:   os.Getenv("VALKEY_TLS") == "true",
		},
		RateLimit:   getInt("RATE_LIMIT_PER_MINUTE", 20),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getEnv("KAFKA_TONE_TOPIC", "tone-results"),
		Tallies: TallySettings{
			TableName:   os.Getenv("TALLY_TABLE_NAME"),
			AWSRegion:   getEnv("AWS_REGION", "us-west-2"),
			AWSEndpoint: os.Getenv("AWS_ENDPOINT"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Int("default", defaultValue))
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Duration("default", defaultValue))
		return defaultValue
	}
	return v
}

func getLevel(key string, defaultValue slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return defaultValue
	}
	return level
}
