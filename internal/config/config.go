package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Database pool sizing
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"5"`

	// Admin HTTP API
	APIListenAddr string `env:"API_LISTEN_ADDR" envDefault:":8080"`
	APIToken      string `env:"API_TOKEN,required"`

	// VPN provisioning
	VpnRequestTimeout int `env:"VPN_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Expiry sweep
	SweepIntervalMinutes int `env:"SWEEP_INTERVAL_MINUTES" envDefault:"60"`

	// Telegram ops-channel logging
	LogTelegramChatID    int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError        int   `env:"LOG_TOPIC_ERROR"`
	LogTopicPayment      int   `env:"LOG_TOPIC_PAYMENT"`
	LogTopicExpiry       int   `env:"LOG_TOPIC_EXPIRY"`
	LogTopicRegistration int   `env:"LOG_TOPIC_REGISTRATION"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
