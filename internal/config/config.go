package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Config keeps runtime settings for the API process.
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	LogLevel        log.Level
	ShutdownTimeout time.Duration

	RedisURL       string
	IdempotencyTTL time.Duration

	DigestTime     string
	DigestInterval time.Duration

	TelegramToken  string
	TelegramChatID int64
}

// DigestEnabled reports whether a digest schedule was configured.
func (c Config) DigestEnabled() bool {
	return c.DigestTime != "" || c.DigestInterval > 0
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:     envOrDefault("DATABASE_URL", "task_manager.db"),
		LogLevel:        log.InfoLevel,
		ShutdownTimeout: 5 * time.Second,
		RedisURL:        env("REDIS_URL"),
		IdempotencyTTL:  24 * time.Hour,
		TelegramToken:   env("TELEGRAM_TOKEN"),
	}

	if raw := env("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if raw := env("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", raw)
		}
		cfg.ShutdownTimeout = d
	}

	if raw := env("IDEMPOTENCY_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid IDEMPOTENCY_TTL %q", raw)
		}
		cfg.IdempotencyTTL = d
	}

	if raw := env("DIGEST_TIME"); raw != "" {
		if _, err := time.Parse("15:04", raw); err != nil {
			return cfg, fmt.Errorf("invalid DIGEST_TIME %q, expected HH:MM", raw)
		}
		cfg.DigestTime = raw
	}

	if raw := env("DIGEST_INTERVAL_HOURS"); raw != "" {
		d, err := parseInterval(raw)
		if err != nil {
			return cfg, err
		}
		cfg.DigestInterval = d
	}

	if raw := env("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// envOrDefault returns the environment variable value or fallback when it is empty.
func envOrDefault(key, fallback string) string {
	if value := env(key); value != "" {
		return value
	}
	return fallback
}

// parseInterval reads a positive number of hours; fractions such as "0.5" are allowed.
func parseInterval(raw string) (time.Duration, error) {
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(hours > 0) || hours > 24*365 {
		return 0, fmt.Errorf("invalid DIGEST_INTERVAL_HOURS %q", raw)
	}
	return time.Duration(hours * float64(time.Hour)), nil
}
