// Package config loads application configuration from a YAML file and
// secrets from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pkgconfig "world-digest/internal/pkg/config"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "config/config.yaml"

// Config is the full application configuration.
type Config struct {
	Regions    []string              `yaml:"regions"`
	RegionInfo map[string]RegionInfo `yaml:"region_info"`
	LLM        LLMConfig             `yaml:"llm"`
	Telegram   TelegramConfig        `yaml:"telegram"`
	Scheduler  SchedulerConfig       `yaml:"scheduler"`
	Digest     DigestConfig          `yaml:"digest"`
}

// RegionInfo describes a configured news region and its feed sources.
type RegionInfo struct {
	NameEN          string `yaml:"name_en"`
	NameRU          string `yaml:"name_ru"`
	Timezone        string `yaml:"timezone"`
	PrimaryLanguage string `yaml:"primary_language"`
	Emoji           string `yaml:"emoji"`
	Feeds           []Feed `yaml:"feeds"`
}

// Feed is a single RSS/Atom source within a region.
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
}

// LLMConfig configures the summarization and translation models.
type LLMConfig struct {
	BaseURL              string  `yaml:"base_url"`
	DefaultModel         string  `yaml:"default_model"`
	FallbackModel        string  `yaml:"fallback_model"`
	Temperature          float32 `yaml:"temperature"`
	MaxTokensSummary     int     `yaml:"max_tokens_summary"`
	MaxTokensTranslation int     `yaml:"max_tokens_translation"`
}

// TelegramConfig configures digest delivery over Telegram.
type TelegramConfig struct {
	RetryAttempts     int `yaml:"retry_attempts"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
	SendDelaySeconds  int `yaml:"send_delay_seconds"`
}

// RetryDelay returns the delay between send retries.
func (t TelegramConfig) RetryDelay() time.Duration {
	return time.Duration(t.RetryDelaySeconds) * time.Second
}

// SendDelay returns the pause between consecutive messages.
func (t TelegramConfig) SendDelay() time.Duration {
	return time.Duration(t.SendDelaySeconds) * time.Second
}

// SchedulerConfig configures when digests are built and delivered.
type SchedulerConfig struct {
	// DeliveryTimes are local times of day in "HH:MM" format.
	DeliveryTimes []string `yaml:"delivery_times"`
	// WindowHours is how far back to collect articles for each digest.
	WindowHours int `yaml:"window_hours"`
	// Timezone the delivery times are interpreted in.
	Timezone string `yaml:"timezone"`
	// RetentionDays is how long raw articles are kept before cleanup.
	RetentionDays int `yaml:"retention_days"`
}

// Window returns the article collection window as a duration.
func (s SchedulerConfig) Window() time.Duration {
	return time.Duration(s.WindowHours) * time.Hour
}

// DigestConfig configures digest content.
type DigestConfig struct {
	// TargetLanguage is the language digests are translated into.
	TargetLanguage string `yaml:"target_language"`
	// MaxArticlesPerRegion caps how many articles feed one digest.
	MaxArticlesPerRegion int `yaml:"max_articles_per_region"`
}

// Load reads the YAML configuration from path, expanding ${VAR} references
// from the environment. A .env file is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = pkgconfig.LoadEnvString("CONFIG_PATH", DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = "anthropic/claude-3.5-sonnet"
	}
	if c.LLM.FallbackModel == "" {
		c.LLM.FallbackModel = "openai/gpt-4o-mini"
	}
	if c.LLM.MaxTokensSummary == 0 {
		c.LLM.MaxTokensSummary = 2048
	}
	if c.LLM.MaxTokensTranslation == 0 {
		c.LLM.MaxTokensTranslation = 4096
	}
	if c.Telegram.RetryAttempts == 0 {
		c.Telegram.RetryAttempts = 3
	}
	if c.Telegram.RetryDelaySeconds == 0 {
		c.Telegram.RetryDelaySeconds = 5
	}
	if c.Telegram.SendDelaySeconds == 0 {
		c.Telegram.SendDelaySeconds = 2
	}
	if len(c.Scheduler.DeliveryTimes) == 0 {
		c.Scheduler.DeliveryTimes = []string{"08:00", "14:00", "20:00"}
	}
	if c.Scheduler.WindowHours == 0 {
		c.Scheduler.WindowHours = 8
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "Europe/Moscow"
	}
	if c.Scheduler.RetentionDays == 0 {
		c.Scheduler.RetentionDays = 7
	}
	if c.Digest.TargetLanguage == "" {
		c.Digest.TargetLanguage = "ru"
	}
	if c.Digest.MaxArticlesPerRegion == 0 {
		c.Digest.MaxArticlesPerRegion = 30
	}
}

// Validate checks the configuration for errors that would break the pipeline.
func (c *Config) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("config: at least one region is required")
	}

	for _, region := range c.Regions {
		info, ok := c.RegionInfo[region]
		if !ok {
			return fmt.Errorf("config: region '%s' has no region_info entry", region)
		}
		if len(info.Feeds) == 0 {
			return fmt.Errorf("config: region '%s' has no feeds", region)
		}
		if info.Timezone != "" {
			if err := pkgconfig.ValidateTimezone(info.Timezone); err != nil {
				return fmt.Errorf("config: region '%s': %w", region, err)
			}
		}
		for _, feed := range info.Feeds {
			if feed.URL == "" {
				return fmt.Errorf("config: region '%s': feed '%s' has no URL", region, feed.Name)
			}
		}
	}

	for _, dt := range c.Scheduler.DeliveryTimes {
		if err := pkgconfig.ValidateDeliveryTime(dt); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if err := pkgconfig.ValidateTimezone(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := pkgconfig.ValidateIntRange(c.Scheduler.WindowHours, 1, 72); err != nil {
		return fmt.Errorf("config: window_hours: %w", err)
	}

	return nil
}

// Region returns the RegionInfo for a region slug.
func (c *Config) Region(region string) (RegionInfo, bool) {
	info, ok := c.RegionInfo[region]
	return info, ok
}

// RegionNameRU returns the Russian display name for a region,
// falling back to the slug when unconfigured.
func (c *Config) RegionNameRU(region string) string {
	if info, ok := c.RegionInfo[region]; ok && info.NameRU != "" {
		return info.NameRU
	}
	return region
}

// Settings holds secrets and runtime options read from the environment.
type Settings struct {
	OpenRouterAPIKey string
	AnthropicAPIKey  string
	LLMProvider      string
	TelegramBotToken string
	TelegramChatID   string
	DatabaseURL      string
	LogLevel         string
}

// LoadSettings reads secrets from the environment. A .env file is loaded
// first if present so local development does not need exported variables.
func LoadSettings() Settings {
	_ = godotenv.Load()

	return Settings{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		LLMProvider:      pkgconfig.LoadEnvString("LLM_PROVIDER", "openrouter"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		LogLevel:         pkgconfig.LoadEnvString("LOG_LEVEL", "info"),
	}
}

// ChatIDs returns the configured Telegram chat IDs.
// TELEGRAM_CHAT_ID supports a comma-separated list for multiple recipients.
func (s Settings) ChatIDs() []string {
	if s.TelegramChatID == "" {
		return nil
	}
	parts := strings.Split(s.TelegramChatID, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
