package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	TelegramToken string
	DatabasePath  string
	Timezone      *time.Location
	SessionTTL    time.Duration
	StoreTimeout  time.Duration
}

func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/pvzbot.db"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Moscow"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	sessionTTL := 15 * time.Minute
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("SESSION_TTL_MINUTES must be a positive number")
		}
		sessionTTL = time.Duration(minutes) * time.Minute
	}

	storeTimeout := 5 * time.Second
	if v := os.Getenv("STORE_TIMEOUT_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("STORE_TIMEOUT_SECONDS must be a positive number")
		}
		storeTimeout = time.Duration(seconds) * time.Second
	}

	return &Config{
		TelegramToken: token,
		DatabasePath:  dbPath,
		Timezone:      tz,
		SessionTTL:    sessionTTL,
		StoreTimeout:  storeTimeout,
	}, nil
}
