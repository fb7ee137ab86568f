package config

import (
	"fmt"
	"os"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend     BackendConfig         `yaml:"backend"`
	Feeds       FeedsConfig           `yaml:"feeds"`
	Retry       RetryConfig           `yaml:"retry"`
	InitRecheck time.Duration         `yaml:"init_recheck"`
	Display     DisplayConfig         `yaml:"display"`
	Pairs       []domain.ExchangePair `yaml:"pairs"`
	Prices      PricesConfig          `yaml:"prices"`
	Alerts      AlertsConfig          `yaml:"alerts"`
	Journal     JournalConfig         `yaml:"journal"`
	Server      ServerConfig          `yaml:"server"`
	Logging     LoggingConfig         `yaml:"logging"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type FeedConfig struct {
	Interval time.Duration `yaml:"interval"`
	Enabled  *bool         `yaml:"enabled"`
	InitGate *bool         `yaml:"init_gate"`
}

// IsEnabled treats a missing flag as enabled.
func (f FeedConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// Gated reports whether cycles wait for the backend to finish initializing.
func (f FeedConfig) Gated() bool {
	return f.InitGate != nil && *f.InitGate
}

type FeedsConfig struct {
	Orderbook FeedConfig `yaml:"orderbook"`
	Summary   FeedConfig `yaml:"summary"`
	Balances  FeedConfig `yaml:"balances"`
	Prices    FeedConfig `yaml:"prices"`
	Clock     FeedConfig `yaml:"clock"`
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

type DisplayConfig struct {
	Locale        string        `yaml:"locale"`
	LocalRate     float64       `yaml:"local_rate"`
	Timezone      string        `yaml:"timezone"`
	Flash         time.Duration `yaml:"flash"`
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// Location resolves Timezone, falling back to UTC.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type PricesConfig struct {
	Watchlist  []string `yaml:"watchlist"`
	Reference  string   `yaml:"reference"`
	Comparison string   `yaml:"comparison"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type AlertsConfig struct {
	Enabled        bool           `yaml:"enabled"`
	EntryThreshold float64        `yaml:"entry_threshold"`
	ExitThreshold  float64        `yaml:"exit_threshold"`
	Cooldown       time.Duration  `yaml:"cooldown"`
	QueueSize      int            `yaml:"queue_size"`
	DigestSchedule string         `yaml:"digest_schedule"`
	Telegram       TelegramConfig `yaml:"telegram"`
}

type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DSN           string        `yaml:"dsn"`
	Retention     time.Duration `yaml:"retention"`
	PruneSchedule string        `yaml:"prune_schedule"`
	HistoryLimit  int           `yaml:"history_limit"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML config file and expands ${VAR} environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Default returns a fully defaulted config, as if loaded from an empty file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}
