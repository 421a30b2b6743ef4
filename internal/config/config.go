// Package config loads the agent configuration from defaults, an optional
// JSON file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jonathan/outreach-agent/internal/drafts"
	"github.com/jonathan/outreach-agent/internal/knowledge"
)

// MaxConnectNoteLength is the platform limit for a connection-request note.
const MaxConnectNoteLength = 300

// MinConnectNoteLength leaves room for one character and an ellipsis.
const MinConnectNoteLength = 4

// Config is the agent configuration. Every field can be set from the
// environment; the JSON file covers the non-secret ones.
type Config struct {
	// Server
	Port      int    `json:"port,omitempty" env:"PORT"`
	LogLevel  string `json:"log_level,omitempty" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format,omitempty" env:"LOG_FORMAT"`

	// Generation
	GeminiAPIKey    string `json:"-" env:"GEMINI_API_KEY"`
	DraftModel      string `json:"draft_model,omitempty" env:"GEMINI_DRAFT_MODEL"`
	ClassifyModel   string `json:"classify_model,omitempty" env:"GEMINI_CLASSIFY_MODEL"`
	HunterMaxLength int    `json:"hunter_max_length,omitempty" env:"HUNTER_MAX_LENGTH"`
	TargetSkill     string `json:"target_skill,omitempty" env:"TARGET_SKILL"`

	// Record store
	AirtableAPIKey        string `json:"-" env:"AIRTABLE_API_KEY"`
	AirtableBaseID        string `json:"airtable_base_id,omitempty" env:"AIRTABLE_BASE_ID"`
	AirtableJobsTable     string `json:"airtable_jobs_table,omitempty" env:"AIRTABLE_JOBS_TABLE"`
	AirtableContactsTable string `json:"airtable_contacts_table,omitempty" env:"AIRTABLE_CONTACTS_TABLE"`

	// Knowledge base
	NotionAPIKey      string `json:"-" env:"NOTION_API_KEY"`
	NotionInboxID     string `json:"notion_inbox_id,omitempty" env:"NOTION_INBOX_ID"`
	NotionKnowledgeID string `json:"notion_knowledge_id,omitempty" env:"NOTION_KNOWLEDGE_ID"`
	NotionProjectsID  string `json:"notion_projects_id,omitempty" env:"NOTION_PROJECTS_ID"`
	NotionTasksID     string `json:"notion_tasks_id,omitempty" env:"NOTION_TASKS_ID"`
	NotionPeopleID    string `json:"notion_people_id,omitempty" env:"NOTION_PEOPLE_ID"`
	NotionContentID   string `json:"notion_content_id,omitempty" env:"NOTION_CONTENT_ID"`

	// Resume store
	DatabaseURL string `json:"-" env:"DATABASE_URL"`

	// Contact discovery
	ApolloAPIKey string `json:"-" env:"APOLLO_API_KEY"`
	UseBrowser   bool   `json:"use_browser,omitempty" env:"USE_BROWSER"`

	// Draft sessions
	RedisAddr     string        `json:"redis_addr,omitempty" env:"REDIS_ADDR"`
	RedisPassword string        `json:"-" env:"REDIS_PASSWORD"`
	RedisDB       int           `json:"redis_db,omitempty" env:"REDIS_DB"`
	DraftTTL      time.Duration `json:"-" env:"DRAFT_TTL"`

	// Approval channel
	TelegramToken  string `json:"-" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty" env:"TELEGRAM_CHAT_ID"`

	// Rate limiting
	RateLimit RateLimitConfig `json:"-" envPrefix:"RATE_LIMIT_"`

	Verbose bool `json:"verbose,omitempty" env:"VERBOSE"`
}

// RateLimitConfig configures per-client request limits on the webhook.
type RateLimitConfig struct {
	Enabled   bool          `env:"ENABLED"`
	Limit     int           `env:"DEFAULT_LIMIT"`
	Window    time.Duration `env:"DEFAULT_WINDOW"`
	Whitelist []string      `env:"WHITELIST" envSeparator:","`
	Blacklist []string      `env:"BLACKLIST" envSeparator:","`
}

// Defaults returns the configuration used when nothing overrides a field.
func Defaults() Config {
	return Config{
		Port:                  8080,
		LogLevel:              "info",
		LogFormat:             "text",
		HunterMaxLength:       295,
		TargetSkill:           "epic",
		AirtableJobsTable:     "Applications",
		AirtableContactsTable: "Contacts",
		DraftTTL:              drafts.DefaultTTL,
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   120,
			Window:  time.Minute,
		},
	}
}

// Load builds the configuration: defaults, then the JSON file at path (if
// path is non-empty), then environment variables. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Defaults()
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := file.MergeWithDefaults(cfg)
		cfg = merged
	}

	// Unset variables leave the field untouched.
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Credentials are
// not checked here; each component requires its own when it is built.
func (c *Config) Validate() error {
	if c.HunterMaxLength < MinConnectNoteLength || c.HunterMaxLength > MaxConnectNoteLength {
		return fmt.Errorf("config error: 'hunter_max_length' must be between %d and %d", MinConnectNoteLength, MaxConnectNoteLength)
	}
	if strings.TrimSpace(c.TargetSkill) == "" {
		return fmt.Errorf("config error: 'target_skill' must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.DraftTTL < 0 {
		return fmt.Errorf("config error: 'draft_ttl' must be non-negative")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.TargetSkill == "" {
		result.TargetSkill = defaults.TargetSkill
	}
	if result.DraftModel == "" {
		result.DraftModel = defaults.DraftModel
	}
	if result.ClassifyModel == "" {
		result.ClassifyModel = defaults.ClassifyModel
	}
	if result.AirtableBaseID == "" {
		result.AirtableBaseID = defaults.AirtableBaseID
	}
	if result.AirtableJobsTable == "" {
		result.AirtableJobsTable = defaults.AirtableJobsTable
	}
	if result.AirtableContactsTable == "" {
		result.AirtableContactsTable = defaults.AirtableContactsTable
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.AirtableAPIKey == "" {
		result.AirtableAPIKey = defaults.AirtableAPIKey
	}
	if result.ApolloAPIKey == "" {
		result.ApolloAPIKey = defaults.ApolloAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.TelegramToken == "" {
		result.TelegramToken = defaults.TelegramToken
	}
	if result.NotionAPIKey == "" {
		result.NotionAPIKey = defaults.NotionAPIKey
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.HunterMaxLength == 0 {
		result.HunterMaxLength = defaults.HunterMaxLength
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.TelegramChatID == 0 {
		result.TelegramChatID = defaults.TelegramChatID
	}
	if result.DraftTTL == 0 {
		result.DraftTTL = defaults.DraftTTL
	}
	if result.RateLimit.Limit == 0 && result.RateLimit.Window == 0 {
		result.RateLimit = defaults.RateLimit
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (environment and CLI flags should always win for bools)

	return result
}

// NotionDatabases returns the configured knowledge-base database IDs.
func (c *Config) NotionDatabases() map[knowledge.Database]string {
	return map[knowledge.Database]string{
		knowledge.DatabaseInbox:     c.NotionInboxID,
		knowledge.DatabaseKnowledge: c.NotionKnowledgeID,
		knowledge.DatabaseProjects:  c.NotionProjectsID,
		knowledge.DatabaseTasks:     c.NotionTasksID,
		knowledge.DatabasePeople:    c.NotionPeopleID,
		knowledge.DatabaseContent:   c.NotionContentID,
	}
}
