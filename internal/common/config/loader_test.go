// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: venues
    user: routing
  redis:
    address: localhost:6379
workers:
  match-venues:
    enabled: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "venue-routing", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, CatalogSourcePostgres, cfg.Matching.CatalogSource)
	assert.Equal(t, "venues", cfg.Matching.VenueIndex)
	assert.Equal(t, UpdateModePolling, cfg.Integrations.Telegram.UpdateMode)
	assert.Equal(t, "/telegram/webhook", cfg.Integrations.Telegram.WebhookPath)
	assert.Equal(t, "INR", cfg.Quote.Currency)
	assert.Equal(t, 7, cfg.Quote.ValidityDays)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "venue-routing", cfg.Observability.ServiceName)

	w := cfg.Workers["match-venues"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REVIEW_BOT_TOKEN", "123:abc")
	body := baseYAML + `
integrations:
  telegram:
    bot_token: ${TEST_REVIEW_BOT_TOKEN}
    review_chat_id: -100123
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Integrations.Telegram.BotToken)
	assert.Equal(t, int64(-100123), cfg.Integrations.Telegram.ReviewChatID)
}

func TestLoadFromFile_UnsetPlaceholderDisablesBot(t *testing.T) {
	t.Setenv("TEST_UNSET_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	body := baseYAML + `
integrations:
  telegram:
    bot_token: ${TEST_UNSET_BOT_TOKEN}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Empty(t, cfg.Integrations.Telegram.BotToken)
}

func TestLoadFromFile_WebhookMode(t *testing.T) {
	t.Setenv("TEST_WEBHOOK_SECRET", "s3cret_token-1")
	body := baseYAML + `
integrations:
  telegram:
    bot_token: "123:abc"
    review_chat_id: -100123
    update_mode: webhook
    webhook_url: https://routing.example.com/telegram/webhook
    webhook_secret: ${TEST_WEBHOOK_SECRET}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, UpdateModeWebhook, cfg.Integrations.Telegram.UpdateMode)
	assert.Equal(t, "s3cret_token-1", cfg.Integrations.Telegram.WebhookSecret)
	assert.Equal(t, "https://routing.example.com/telegram/webhook", cfg.Integrations.Telegram.WebhookURL)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		extra   string
		wantErr string
	}{
		{
			name:    "unknown catalog source",
			extra:   "matching:\n  catalog_source: mongo\n",
			wantErr: "matching.catalog_source",
		},
		{
			name:    "elasticsearch source without address",
			extra:   "matching:\n  catalog_source: elasticsearch\n",
			wantErr: "database.elasticsearch",
		},
		{
			name:    "bad update mode",
			extra:   "integrations:\n  telegram:\n    update_mode: carrier-pigeon\n",
			wantErr: "update_mode",
		},
		{
			name:    "webhook mode without secret",
			extra:   "integrations:\n  telegram:\n    update_mode: webhook\n",
			wantErr: "webhook_secret",
		},
		{
			name:    "webhook secret with forbidden characters",
			extra:   "integrations:\n  telegram:\n    update_mode: webhook\n    webhook_secret: \"not a token!\"\n",
			wantErr: "webhook_secret",
		},
		{
			name:    "webhook mode with bot but no public url",
			extra:   "integrations:\n  telegram:\n    bot_token: \"123:abc\"\n    review_chat_id: -1001\n    update_mode: webhook\n    webhook_secret: abc\n",
			wantErr: "webhook_url",
		},
		{
			name:    "bot token without review chat",
			extra:   "integrations:\n  telegram:\n    bot_token: \"123:abc\"\n",
			wantErr: "review_chat_id",
		},
		{
			name:    "tax rate out of range",
			extra:   "quote:\n  tax_rate: 18\n",
			wantErr: "tax_rate",
		},
		{
			name:    "ses without sender",
			extra:   "integrations:\n  aws:\n    ses:\n      enabled: true\n",
			wantErr: "from_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, baseYAML+tt.extra))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingBroker(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "database:\n  redis:\n    address: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camunda.broker_address")
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"notify-reviewer": {Enabled: false}}}

	assert.False(t, IsWorkerEnabled(cfg, "notify-reviewer"))
	assert.True(t, IsWorkerEnabled(cfg, "match-venues"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "match-venues").Timeout)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", p.GetDSN())
}
