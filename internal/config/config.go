// Package config loads application settings from environment variables
// (optionally seeded from a .env file), applies defaults and validates
// the result before anything else starts.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `validate:"required"`
	DatabaseURL string `validate:"required"`
	JWTSecret   string `validate:"required,min=16"`

	Grok     GrokConfig
	Telegram TelegramConfig
	WhatsApp WhatsAppConfig

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	FollowupInterval  time.Duration `validate:"min=1m"`
	FollowupStaleDays int           `validate:"min=1,max=90"`
}

type GrokConfig struct {
	APIKey     string        `validate:"required"`
	Model      string        `validate:"required"`
	BaseURL    string        `validate:"required,url"`
	Timeout    time.Duration `validate:"min=1s,max=10m"`
	MaxRetries int           `validate:"min=0,max=10"`
}

// TelegramConfig drives stage-change notifications. Both fields empty
// disables the notifier.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// WhatsAppConfig holds Business Cloud API credentials for the whatsapp
// outreach channel. Both fields empty disables the channel.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
}

// Load reads .env if present, overlays process environment variables on the
// defaults and validates the assembled configuration.
func Load() (*Config, error) {
	start := time.Now()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	cfg.Grok.APIKey = getEnv("GROK_API_KEY", cfg.Grok.APIKey)
	cfg.Grok.Model = getEnv("GROK_MODEL", cfg.Grok.Model)
	cfg.Grok.BaseURL = getEnv("GROK_BASE_URL", cfg.Grok.BaseURL)

	var err error
	if cfg.Grok.Timeout, err = getDuration("GROK_TIMEOUT", cfg.Grok.Timeout); err != nil {
		return nil, err
	}
	if cfg.Grok.MaxRetries, err = getInt("GROK_MAX_RETRIES", cfg.Grok.MaxRetries); err != nil {
		return nil, err
	}

	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.Telegram.ChatID, err = getInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}

	cfg.WhatsApp.AccessToken = getEnv("WHATSAPP_ACCESS_TOKEN", "")
	cfg.WhatsApp.PhoneNumberID = getEnv("WHATSAPP_PHONE_NUMBER_ID", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if cfg.FollowupInterval, err = getDuration("FOLLOWUP_INTERVAL", cfg.FollowupInterval); err != nil {
		return nil, err
	}
	if cfg.FollowupStaleDays, err = getInt("FOLLOWUP_STALE_DAYS", cfg.FollowupStaleDays); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"grok_model", cfg.Grok.Model,
		"grok_timeout", cfg.Grok.Timeout,
		"log_level", cfg.LogLevel,
		"duration_ms", time.Since(start).Milliseconds())

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port: "8080",
		Grok: GrokConfig{
			Model:      "grok-2-latest",
			BaseURL:    "https://api.x.ai/v1",
			Timeout:    20 * time.Second,
			MaxRetries: 3,
		},
		LogLevel:          "info",
		LogFormat:         "text",
		FollowupInterval:  time.Hour,
		FollowupStaleDays: 3,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, v)
	}
	return n, nil
}

// getDuration accepts Go duration strings ("20s", "1h30m") and, for
// compatibility with older deployments, bare integers meaning seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: expected duration, got %q", key, v)
	}
	return d, nil
}
