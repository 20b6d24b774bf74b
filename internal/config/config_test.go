package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	_ "time/tzdata"
)

func validConfig() *Config {
	return &Config{
		BotToken:           "token",
		StorageDriver:      StorageDriverPostgres,
		DatabaseURL:        "postgres://localhost/orderboard",
		Timezone:           "Europe/Berlin",
		WeeklyResetWeekday: 1,
		WeeklyResetHour:    19,
		MonthlyResetHour:   20,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("ADMIN_IDS", "1,2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timezone != "Europe/Berlin" || cfg.WeeklyResetWeekday != 1 || cfg.WeeklyResetHour != 19 || cfg.MonthlyResetHour != 20 {
		t.Fatalf("unexpected schedule defaults %+v", cfg)
	}
	if cfg.DataFile == "" || cfg.ArchivePrefix != "leaderboards" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.IsAdmin(2) || cfg.IsAdmin(3) {
		t.Fatalf("admin ids not parsed: %v", cfg.AdminIDs)
	}
}

func TestLoadDotEnvKeepsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dotenv := "BOT_TOKEN=from-file\nSTORAGE_DRIVER=file\nTIMEZONE=UTC\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TIMEZONE", "Europe/Berlin")
	for _, k := range []string{"BOT_TOKEN", "STORAGE_DRIVER"} {
		t.Setenv(k, "unset below")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "from-file" || cfg.StorageDriver != StorageDriverFile {
		t.Fatalf(".env values not applied: %+v", cfg)
	}
	if cfg.Timezone != "Europe/Berlin" {
		t.Fatalf("environment should win over .env, got %q", cfg.Timezone)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "unset below")
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("STORAGE_DRIVER", "file")

	if _, err := Load(); err == nil {
		t.Fatalf("missing BOT_TOKEN should fail")
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.StorageDriver = "redis" }, "STORAGE_DRIVER"},
		{"weekday", func(c *Config) { c.WeeklyResetWeekday = 7 }, "WEEKLY_RESET_WEEKDAY"},
		{"hour", func(c *Config) { c.MonthlyResetHour = 24 }, "MONTHLY_RESET_HOUR"},
		{"minute", func(c *Config) { c.WeeklyResetMinute = -1 }, "WEEKLY_RESET_MINUTE"},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	loc, err := validConfig().Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Fatalf("Location = %s", loc)
	}
}
