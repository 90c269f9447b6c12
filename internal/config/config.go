package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values load from YAML,
// then environment variables override (a .env file is picked up when
// present).
type Config struct {
	API struct {
		Token              string `yaml:"token" envconfig:"WB_API_TOKEN"`
		BaseURL            string `yaml:"base_url" envconfig:"WB_API_URL"`
		TimeoutSeconds     int    `yaml:"timeout_seconds" envconfig:"WB_API_TIMEOUT_SECONDS"`
		RatePerSecond      int    `yaml:"rate_limit_per_second" envconfig:"WB_RATE_LIMIT_PER_SECOND"`
		RateWaitCapSeconds int    `yaml:"rate_wait_cap_seconds" envconfig:"WB_RATE_WAIT_CAP_SECONDS"`
	} `yaml:"api"`
	Strategies struct {
		File string `yaml:"file" envconfig:"STRATEGIES_FILE"`
	} `yaml:"strategies"`
	History struct {
		StateFile string `yaml:"state_file" envconfig:"STATE_FILE"`
	} `yaml:"history"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Alerts struct {
		BidJumpPercent     float64 `yaml:"bid_jump_percent" envconfig:"ALERT_BID_JUMP_PERCENT"`
		NoImpressionsHours int     `yaml:"no_impressions_hours" envconfig:"ALERT_NO_IMPRESSIONS_HOURS"`
	} `yaml:"alerts"`
	Executor struct {
		MaxAttempts int `yaml:"max_attempts" envconfig:"EXECUTOR_MAX_ATTEMPTS"`
	} `yaml:"executor"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; env-only configuration works.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://advert-api.wildberries.ru"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.API.RatePerSecond == 0 {
		cfg.API.RatePerSecond = 4
	}
	if cfg.API.RateWaitCapSeconds == 0 {
		cfg.API.RateWaitCapSeconds = 10
	}
	if cfg.Strategies.File == "" {
		cfg.Strategies.File = "data/strategies.json"
	}
	if cfg.History.StateFile == "" {
		cfg.History.StateFile = "data/campaign_states.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/smartbid.db"
	}
	if cfg.Alerts.BidJumpPercent == 0 {
		cfg.Alerts.BidJumpPercent = 50
	}
	if cfg.Alerts.NoImpressionsHours == 0 {
		cfg.Alerts.NoImpressionsHours = 24
	}
	if cfg.Executor.MaxAttempts == 0 {
		cfg.Executor.MaxAttempts = 3
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent. The
// API token is deliberately not required: a tokenless run falls back to
// the mock fetcher for local development.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RatePerSecond <= 0 {
		return fmt.Errorf("api.rate_limit_per_second must be positive")
	}
	if c.Strategies.File == "" {
		return fmt.Errorf("strategies.file is required")
	}
	if c.History.StateFile == "" {
		return fmt.Errorf("history.state_file is required")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// APITimeout returns the per-call HTTP timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RateWaitCap returns the maximum time a call may queue behind the rate
// limiter before degrading to a transient failure.
func (c *Config) RateWaitCap() time.Duration {
	return time.Duration(c.API.RateWaitCapSeconds) * time.Second
}

// NoImpressionsWindow returns the zero-impression alert window.
func (c *Config) NoImpressionsWindow() time.Duration {
	return time.Duration(c.Alerts.NoImpressionsHours) * time.Hour
}
