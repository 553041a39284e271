package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Seen-set persistence policies.
const (
	PolicyHistory  = "history"
	PolicySnapshot = "snapshot"
)

// ErrMissingWebhook is returned when no webhook endpoint is configured.
var ErrMissingWebhook = errors.New("webhook_url is required (set WEBHOOK_URL or SLACK_WEBHOOK_URL)")

// Config holds the application configuration loaded from the environment.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	WebhookURL            string        `mapstructure:"webhook_url"`
	WebhookTimeoutSeconds int64         `mapstructure:"webhook_timeout_seconds"`
	WebhookTimeout        time.Duration `mapstructure:"-"`
	PublishersFile        string        `mapstructure:"publishers_file"`

	SourceURL           string        `mapstructure:"source_url"`
	SourceFile          string        `mapstructure:"source_file"`
	FetchStrategy       string        `mapstructure:"fetch_strategy"`
	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`

	SeenPolicy  string `mapstructure:"seen_policy"`
	StorageType string `mapstructure:"storage_type"`
	StatePath   string `mapstructure:"state_path"`
	BBoltPath   string `mapstructure:"bbolt_path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisKey    string `mapstructure:"redis_key"`

	RecencyWindowMinutes int64          `mapstructure:"recency_window_minutes"`
	RecencyWindow        time.Duration  `mapstructure:"-"`
	Timezone             string         `mapstructure:"timezone"`
	Location             *time.Location `mapstructure:"-"`
	PublishedLayout      string         `mapstructure:"published_layout"`

	MessageHeader     string `mapstructure:"message_header"`
	MessageTitleWidth int    `mapstructure:"message_title_width"`
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	v.SetDefault("app_name", "khobor-watch")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("webhook_url", "")
	v.SetDefault("webhook_timeout_seconds", 10)
	v.SetDefault("publishers_file", "")
	v.SetDefault("source_url", "https://ai-info-aggregator.vercel.app/")
	v.SetDefault("source_file", "")
	v.SetDefault("fetch_strategy", "rendered")
	v.SetDefault("fetch_timeout_seconds", 30)
	v.SetDefault("seen_policy", PolicyHistory)
	v.SetDefault("storage_type", "json")
	v.SetDefault("state_path", "./articles.json")
	v.SetDefault("bbolt_path", "./data/seen.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_key", "khobor-watch:seen")
	v.SetDefault("recency_window_minutes", 0)
	v.SetDefault("timezone", "Asia/Tokyo")
	v.SetDefault("published_layout", "01/02 15:04")
	v.SetDefault("message_header", "🆕 新着記事")
	v.SetDefault("message_title_width", 120)

	v.AutomaticEnv()
	if err := v.BindEnv("webhook_url", "WEBHOOK_URL", "SLACK_WEBHOOK_URL"); err != nil {
		return nil, fmt.Errorf("bind webhook env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize validates the raw values and fills the derived fields.
func (cfg *Config) normalize() error {
	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	if cfg.WebhookURL == "" {
		return ErrMissingWebhook
	}

	cfg.SeenPolicy = strings.ToLower(strings.TrimSpace(cfg.SeenPolicy))
	switch cfg.SeenPolicy {
	case PolicyHistory, PolicySnapshot:
	default:
		return fmt.Errorf("invalid seen_policy %q (expected %s or %s)", cfg.SeenPolicy, PolicyHistory, PolicySnapshot)
	}

	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch cfg.StorageType {
	case "json", "bbolt", "redis":
	default:
		return fmt.Errorf("invalid storage_type %q (expected json, bbolt or redis)", cfg.StorageType)
	}

	cfg.FetchStrategy = strings.ToLower(strings.TrimSpace(cfg.FetchStrategy))
	switch cfg.FetchStrategy {
	case "rendered", "static", "feed", "sitemap":
	default:
		return fmt.Errorf("invalid fetch_strategy %q (expected rendered, static, feed or sitemap)", cfg.FetchStrategy)
	}
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	if cfg.SourceURL == "" && strings.TrimSpace(cfg.SourceFile) == "" {
		return fmt.Errorf("source_url is empty")
	}

	if cfg.WebhookTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid webhook_timeout_seconds (must be positive seconds)")
	}
	cfg.WebhookTimeout = time.Duration(cfg.WebhookTimeoutSeconds) * time.Second

	if cfg.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	if cfg.RecencyWindowMinutes < 0 {
		return fmt.Errorf("invalid recency_window_minutes (must not be negative)")
	}
	cfg.RecencyWindow = time.Duration(cfg.RecencyWindowMinutes) * time.Minute

	loc, err := LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	cfg.Location = loc

	if strings.TrimSpace(cfg.PublishedLayout) == "" {
		return fmt.Errorf("published_layout is empty")
	}
	return nil
}

// fixedZones backs well-known zones when the host has no tz database.
var fixedZones = map[string]*time.Location{
	"Asia/Tokyo":   time.FixedZone("JST", 9*3600),
	"Asia/Kolkata": time.FixedZone("IST", 5*3600+30*60),
	"UTC":          time.UTC,
}

// LoadLocation resolves a timezone name. It never falls back to the host zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("timezone is empty")
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	if loc, ok := fixedZones[name]; ok {
		return loc, nil
	}
	return nil, fmt.Errorf("unknown timezone %q", name)
}
