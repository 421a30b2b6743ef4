package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/knowledge"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"hunter_max_length": 280,
		"target_skill": "fhir",
		"use_browser": true,
		"telegram_chat_id": 12345
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 280, cfg.HunterMaxLength)
	assert.Equal(t, "fhir", cfg.TargetSkill)
	assert.True(t, cfg.UseBrowser)
	assert.Equal(t, int64(12345), cfg.TelegramChatID)
}

func TestLoadConfig_SecretsIgnored(t *testing.T) {
	path := writeConfig(t, `{"GeminiAPIKey": "leaked", "target_skill": "epic"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoad_Layering(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{"port": 9090, "target_skill": "fhir", "hunter_max_length": 250}`)

	t.Setenv("TARGET_SKILL", "cerner")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("DRAFT_TTL", "24h")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1,10.0.0.2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 250, cfg.HunterMaxLength)
	assert.Equal(t, "cerner", cfg.TargetSkill)
	assert.Equal(t, "key-123", cfg.GeminiAPIKey)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, "Contacts", cfg.AirtableContactsTable)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimit.Whitelist)
}

func TestLoad_ModelOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{"draft_model": "gemini-2.5-pro", "classify_model": "gemini-2.0-flash"}`)
	t.Setenv("GEMINI_CLASSIFY_MODEL", "gemini-2.5-flash-lite")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.DraftModel)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.ClassifyModel)
}

func TestLoad_NotionDatabases(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `{"notion_inbox_id": "db-inbox", "notion_content_id": "db-content", "notion_api_key": "ignored"}`)
	t.Setenv("NOTION_API_KEY", "secret")
	t.Setenv("NOTION_CONTENT_ID", "db-content-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.NotionAPIKey)

	dbs := cfg.NotionDatabases()
	assert.Equal(t, "db-inbox", dbs[knowledge.DatabaseInbox])
	assert.Equal(t, "db-content-env", dbs[knowledge.DatabaseContent])
	assert.Empty(t, dbs[knowledge.DatabaseTasks])
	assert.Len(t, dbs, 6)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().HunterMaxLength, cfg.HunterMaxLength)
	assert.Equal(t, "epic", cfg.TargetSkill)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HUNTER_MAX_LENGTH", "301")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hunter_max_length")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults"},
		{name: "limit at platform max", mutate: func(c *Config) { c.HunterMaxLength = 300 }},
		{name: "limit too large", mutate: func(c *Config) { c.HunterMaxLength = 301 }, wantErr: "hunter_max_length"},
		{name: "limit zero", mutate: func(c *Config) { c.HunterMaxLength = 0 }, wantErr: "hunter_max_length"},
		{name: "limit without room for ellipsis", mutate: func(c *Config) { c.HunterMaxLength = 3 }, wantErr: "between 4 and 300"},
		{name: "smallest limit", mutate: func(c *Config) { c.HunterMaxLength = 4 }},
		{name: "blank skill", mutate: func(c *Config) { c.TargetSkill = "  " }, wantErr: "target_skill"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "port"},
		{name: "negative ttl", mutate: func(c *Config) { c.DraftTTL = -time.Second }, wantErr: "draft_ttl"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		Port:        9090,
		TargetSkill: "fhir",
		UseBrowser:  true,
	}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "fhir", merged.TargetSkill)
	assert.True(t, merged.UseBrowser)
	assert.Equal(t, 295, merged.HunterMaxLength)
	assert.Equal(t, "Applications", merged.AirtableJobsTable)
	assert.Equal(t, 72*time.Hour, merged.DraftTTL)
	assert.Equal(t, drafts.DefaultTTL, merged.DraftTTL)
	assert.Equal(t, Defaults().RateLimit, merged.RateLimit)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "debug", merged.LogLevel)
	assert.Zero(t, merged.Port)
}
