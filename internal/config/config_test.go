package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"MASentinel/internal/strategy"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy.ShortWindow != 20 || cfg.Strategy.LongWindow != 100 {
		t.Errorf("expected default windows 20/100, got %d/%d", cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
	if cfg.Schedule.ScanCron == "" || cfg.Database.SQLitePath == "" || cfg.Tracker.StateFile == "" {
		t.Errorf("expected defaults to be filled: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
strategy:
  short_window: 10
  long_window: 50
watchlist: [AAPL, MSFT]
telegram:
  bot_token: file-token
  chat_id: "42"
`)
	t.Setenv("LONG_WINDOW", "60")
	t.Setenv("WATCHLIST", "AIR.PA, SAP.DE ,")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy.ShortWindow != 10 {
		t.Errorf("expected short 10, got %d", cfg.Strategy.ShortWindow)
	}
	if cfg.Strategy.LongWindow != 60 {
		t.Errorf("expected env override long 60, got %d", cfg.Strategy.LongWindow)
	}
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "AIR.PA" || cfg.Watchlist[1] != "SAP.DE" {
		t.Errorf("unexpected watchlist: %v", cfg.Watchlist)
	}
	if cfg.Telegram.BotToken != "env-token" || !cfg.NotificationsEnabled() {
		t.Errorf("expected env token and notifications enabled, got %+v", cfg.Telegram)
	}
}

func TestValidate_InvalidWindow(t *testing.T) {
	path := writeConfig(t, "strategy:\n  short_window: -5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, strategy.ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestValidate_PartialTelegram(t *testing.T) {
	path := writeConfig(t, "telegram:\n  bot_token: abc\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when chat_id is missing")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "strategy: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_LookbackTooShortForLongWindow(t *testing.T) {
	path := writeConfig(t, "strategy:\n  long_window: 300\n  lookback_days: 400\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); !errors.Is(err, strategy.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}

	cfg.Strategy.LookbackDays = 450
	if err := cfg.Validate(); err != nil {
		t.Errorf("450 calendar days should cover a 300-bar window: %v", err)
	}
}
