package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
regions:
  - usa
  - europe

region_info:
  usa:
    name_en: "USA"
    name_ru: "США"
    timezone: "America/New_York"
    primary_language: "en"
    emoji: "🇺🇸"
    feeds:
      - name: "AP Top News"
        url: "https://apnews.com/rss"
        language: "en"
  europe:
    name_en: "Europe"
    name_ru: "Европа"
    timezone: "Europe/Brussels"
    primary_language: "en"
    emoji: "🇪🇺"
    feeds:
      - name: "Euronews"
        url: "https://euronews.com/rss"
        language: "en"

llm:
  base_url: "https://openrouter.ai/api/v1"
  default_model: "anthropic/claude-3.5-sonnet"
  fallback_model: "openai/gpt-4o-mini"
  temperature: 0.3
  max_tokens_summary: 2048
  max_tokens_translation: 4096

telegram:
  retry_attempts: 3
  retry_delay_seconds: 5
  send_delay_seconds: 2

scheduler:
  delivery_times: ["08:00", "14:00", "20:00"]
  window_hours: 8
  timezone: "Europe/Moscow"
  retention_days: 7

digest:
  target_language: "ru"
  max_articles_per_region: 30
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"usa", "europe"}, cfg.Regions)
	assert.Equal(t, "США", cfg.RegionInfo["usa"].NameRU)
	assert.Len(t, cfg.RegionInfo["europe"].Feeds, 1)
	assert.Equal(t, "https://euronews.com/rss", cfg.RegionInfo["europe"].Feeds[0].URL)

	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.LLM.DefaultModel)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLM.FallbackModel)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 0.001)

	assert.Equal(t, 3, cfg.Telegram.RetryAttempts)
	assert.Equal(t, []string{"08:00", "14:00", "20:00"}, cfg.Scheduler.DeliveryTimes)
	assert.Equal(t, "ru", cfg.Digest.TargetLanguage)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "regions: [usa\n  broken")

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_FEED_URL", "https://example.com/feed.xml")

	path := writeConfig(t, `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    name_ru: "США"
    feeds:
      - name: "Test"
        url: "${TEST_FEED_URL}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/feed.xml", cfg.RegionInfo["usa"].Feeds[0].URL)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    feeds:
      - name: "Test"
        url: "https://example.com/feed.xml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.NotEmpty(t, cfg.LLM.DefaultModel)
	assert.NotEmpty(t, cfg.LLM.FallbackModel)
	assert.Equal(t, 3, cfg.Telegram.RetryAttempts)
	assert.Equal(t, []string{"08:00", "14:00", "20:00"}, cfg.Scheduler.DeliveryTimes)
	assert.Equal(t, 8, cfg.Scheduler.WindowHours)
	assert.Equal(t, "Europe/Moscow", cfg.Scheduler.Timezone)
	assert.Equal(t, 7, cfg.Scheduler.RetentionDays)
	assert.Equal(t, "ru", cfg.Digest.TargetLanguage)
	assert.Equal(t, 30, cfg.Digest.MaxArticlesPerRegion)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no regions",
			yaml:    `regions: []`,
			wantErr: "at least one region",
		},
		{
			name: "missing region_info",
			yaml: `
regions: [usa]
region_info: {}
`,
			wantErr: "no region_info entry",
		},
		{
			name: "region without feeds",
			yaml: `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    feeds: []
`,
			wantErr: "has no feeds",
		},
		{
			name: "feed without URL",
			yaml: `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    feeds:
      - name: "Broken"
        url: ""
`,
			wantErr: "has no URL",
		},
		{
			name: "bad region timezone",
			yaml: `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    timezone: "Mars/Olympus"
    feeds:
      - name: "Test"
        url: "https://example.com/feed.xml"
`,
			wantErr: "invalid timezone",
		},
		{
			name: "bad delivery time",
			yaml: `
regions: [usa]
region_info:
  usa:
    name_en: "USA"
    feeds:
      - name: "Test"
        url: "https://example.com/feed.xml"
scheduler:
  delivery_times: ["25:00"]
`,
			wantErr: "invalid delivery time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_RegionNameRU(t *testing.T) {
	cfg := &Config{
		RegionInfo: map[string]RegionInfo{
			"usa": {NameRU: "США"},
		},
	}

	assert.Equal(t, "США", cfg.RegionNameRU("usa"))
	assert.Equal(t, "latam", cfg.RegionNameRU("latam"))
}

func TestSettings_ChatIDs(t *testing.T) {
	tests := []struct {
		name     string
		chatID   string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "123456", []string{"123456"}},
		{"multiple", "123, 456,789", []string{"123", "456", "789"}},
		{"trailing comma", "123,", []string{"123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{TelegramChatID: tt.chatID}
			assert.Equal(t, tt.expected, s.ChatIDs())
		})
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/digest")

	s := LoadSettings()

	assert.Equal(t, "sk-or-test", s.OpenRouterAPIKey)
	assert.Equal(t, "123:abc", s.TelegramBotToken)
	assert.Equal(t, []string{"42"}, s.ChatIDs())
	assert.Equal(t, "postgres://localhost/digest", s.DatabaseURL)
	assert.Equal(t, "openrouter", s.LLMProvider)
	assert.Equal(t, "info", s.LogLevel)
}
