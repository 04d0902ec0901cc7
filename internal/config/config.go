package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MASentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		CSVDir  string `yaml:"csv_dir"`
	} `yaml:"data_source"`
	Strategy struct {
		ShortWindow  int `yaml:"short_window"`
		LongWindow   int `yaml:"long_window"`
		LookbackDays int `yaml:"lookback_days"`
	} `yaml:"strategy"`
	Watchlist []string `yaml:"watchlist"`
	Universe  struct {
		File            string `yaml:"file"`
		CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	} `yaml:"universe"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Tracker struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"tracker"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	MetricsAddr string `yaml:"metrics_addr"`
	Proxy       string `yaml:"proxy"`
}

// Load reads config from a YAML file, then a .env file if present, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("PRICE_CSV_DIR"); v != "" {
		c.DataSource.CSVDir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SHORT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Strategy.ShortWindow = n
		}
	}
	if v := os.Getenv("LONG_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Strategy.LongWindow = n
		}
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitList(v)
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		c.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Strategy.ShortWindow == 0 {
		c.Strategy.ShortWindow = 20
	}
	if c.Strategy.LongWindow == 0 {
		c.Strategy.LongWindow = 100
	}
	if c.Strategy.LookbackDays == 0 {
		c.Strategy.LookbackDays = 400
	}
	if c.Universe.File == "" {
		c.Universe.File = "configs/universe.yaml"
	}
	if c.Universe.CacheTTLMinutes == 0 {
		c.Universe.CacheTTLMinutes = 24 * 60
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 22 * * 1-5"
	}
	if c.Tracker.StateFile == "" {
		c.Tracker.StateFile = "data/alert_state.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/ma_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Params returns the moving-average windows as engine parameters.
func (c *Config) Params() strategy.Params {
	return strategy.Params{ShortWindow: c.Strategy.ShortWindow, LongWindow: c.Strategy.LongWindow}
}

// NotificationsEnabled reports whether Telegram credentials are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Strategy.LookbackDays <= 0 {
		return fmt.Errorf("strategy.lookback_days must be positive")
	}
	if tradingDays := c.Strategy.LookbackDays * 5 / 7; tradingDays < c.Strategy.LongWindow {
		return fmt.Errorf("%w: strategy.lookback_days %d holds about %d trading days, fewer than long_window %d",
			strategy.ErrInsufficientData, c.Strategy.LookbackDays, tradingDays, c.Strategy.LongWindow)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for _, t := range c.Watchlist {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("watchlist contains an empty ticker")
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
