package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverFile     = "file"
)

type Config struct {
	// Core
	BotToken      string `env:"BOT_TOKEN,required"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	DataFile      string `env:"DATA_FILE" envDefault:"data/orderboard.json"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Privileged members
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Reset schedule, evaluated in Timezone
	Timezone           string `env:"TIMEZONE" envDefault:"Europe/Berlin"`
	WeeklyResetWeekday int    `env:"WEEKLY_RESET_WEEKDAY" envDefault:"1"` // 0 = Sunday
	WeeklyResetHour    int    `env:"WEEKLY_RESET_HOUR" envDefault:"19"`
	WeeklyResetMinute  int    `env:"WEEKLY_RESET_MINUTE" envDefault:"0"`
	MonthlyResetHour   int    `env:"MONTHLY_RESET_HOUR" envDefault:"20"`
	MonthlyResetMinute int    `env:"MONTHLY_RESET_MINUTE" envDefault:"0"`

	// Chats the boards are published to
	TaskChatID      int64 `env:"TASK_CHAT_ID"`
	OpenTasksChatID int64 `env:"OPEN_TASKS_CHAT_ID"`
	ClaimChatID     int64 `env:"CLAIM_CHAT_ID"`
	ApprovalChatID  int64 `env:"APPROVAL_CHAT_ID"`
	WeeklyChatID    int64 `env:"WEEKLY_CHAT_ID"`
	MonthlyChatID   int64 `env:"MONTHLY_CHAT_ID"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Read-only HTTP API
	HTTPEnabled bool `env:"HTTP_ENABLED" envDefault:"false"`
	Port        int  `env:"PORT" envDefault:"3000"`

	// Archive upload (S3 compatible), disabled when the bucket is empty
	ArchiveBucket    string `env:"ARCHIVE_S3_BUCKET"`
	ArchivePrefix    string `env:"ARCHIVE_S3_PREFIX" envDefault:"leaderboards"`
	ArchiveRegion    string `env:"ARCHIVE_S3_REGION" envDefault:"auto"`
	ArchiveEndpoint  string `env:"ARCHIVE_S3_ENDPOINT"`
	ArchiveAccessKey string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	ArchiveSecretKey string `env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`

	// Telegram logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicClaim     int   `env:"LOG_TOPIC_CLAIM"`
	LogTopicReview    int   `env:"LOG_TOPIC_REVIEW"`
	LogTopicCatalog   int   `env:"LOG_TOPIC_CATALOG"`
	LogTopicReset     int   `env:"LOG_TOPIC_RESET"`
}

// Load reads .env (without overriding the environment) and parses the config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case StorageDriverFile:
		if c.DataFile == "" {
			errs = append(errs, errors.New("DATA_FILE is required for the file driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	if c.WeeklyResetWeekday < 0 || c.WeeklyResetWeekday > 6 {
		errs = append(errs, fmt.Errorf("WEEKLY_RESET_WEEKDAY %d out of range 0-6", c.WeeklyResetWeekday))
	}
	for name, v := range map[string]int{"WEEKLY_RESET_HOUR": c.WeeklyResetHour, "MONTHLY_RESET_HOUR": c.MonthlyResetHour} {
		if v < 0 || v > 23 {
			errs = append(errs, fmt.Errorf("%s %d out of range 0-23", name, v))
		}
	}
	for name, v := range map[string]int{"WEEKLY_RESET_MINUTE": c.WeeklyResetMinute, "MONTHLY_RESET_MINUTE": c.MonthlyResetMinute} {
		if v < 0 || v > 59 {
			errs = append(errs, fmt.Errorf("%s %d out of range 0-59", name, v))
		}
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Location resolves the reset time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
