package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"BlogEngine/internal/trending"
)

const (
	defaultTimezone = "America/Los_Angeles"
	configPathEnv   = "BLOG_ENGINE_CONFIG"
	dotEnvFile      = ".env"
)

// Store drivers.
const (
	StoreBadger   = "badger"
	StorePostgres = "postgres"
	StoreSanity   = "sanity"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds high-level settings required across the application.
type Config struct {
	Generation    GenerationConfig   `yaml:"generation"`
	Dedup         DedupConfig        `yaml:"dedup"`
	Migration     MigrationConfig    `yaml:"migration"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Server        ServerConfig       `yaml:"server"`
	LLM           LLMConfig          `yaml:"llm"`
	Store         StoreConfig        `yaml:"store"`
	Sources       SourcesConfig      `yaml:"sources"`
	Unsplash      UnsplashConfig     `yaml:"unsplash"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// GenerationConfig tunes trend selection and draft generation.
type GenerationConfig struct {
	ArticlesToGenerate int           `yaml:"articlesToGenerate" env:"ARTICLES_TO_GENERATE" validate:"gte=1,lte=50"`
	MinRelevanceScore  float64       `yaml:"minRelevanceScore" env:"MIN_RELEVANCE_SCORE" validate:"gte=0,lte=1"`
	RecentDays         int           `yaml:"recentDays" env:"RECENT_DAYS" validate:"gte=1"`
	TopicDelay         time.Duration `yaml:"topicDelay" env:"TOPIC_DELAY" validate:"gte=0"`
	Keywords           []string      `yaml:"keywords" validate:"min=1,dive,required"`
}

// DedupConfig controls fuzzy title matching.
type DedupConfig struct {
	MinWordLength int      `yaml:"minWordLength" validate:"gte=1"`
	Threshold     float64  `yaml:"threshold" validate:"gt=0,lte=1"`
	PreserveWords []string `yaml:"preserveWords"`
}

// SweepConfig bounds one backfill sweep.
type SweepConfig struct {
	MaxRecords   int `yaml:"maxRecords" env:"MAX_RECORDS" validate:"gte=1"`
	SummaryChars int `yaml:"summaryChars" env:"SUMMARY_CHARS" validate:"gte=100"`
}

// MigrationConfig drives the GEO, references and blog post backfills.
type MigrationConfig struct {
	GEO                  SweepConfig   `yaml:"geo" envPrefix:"MIGRATION_GEO_"`
	References           SweepConfig   `yaml:"references" envPrefix:"MIGRATION_REFERENCES_"`
	BlogPosts            SweepConfig   `yaml:"blogPosts" envPrefix:"MIGRATION_BLOG_POSTS_"`
	ProductsBatch        int           `yaml:"productsBatch" env:"MIGRATION_PRODUCTS_BATCH" validate:"gte=1"`
	MigrateBlogPosts     bool          `yaml:"migrateBlogPosts" env:"MIGRATION_BLOG_POSTS"`
	RecordDelay          time.Duration `yaml:"recordDelay" env:"MIGRATION_RECORD_DELAY" validate:"gte=0"`
	RunOnStartup         bool          `yaml:"runOnStartup" env:"MIGRATION_ON_STARTUP"`
	RunAfterGeneration   bool          `yaml:"runAfterGeneration" env:"MIGRATION_AFTER_GENERATION"`
	RenameReferenceTypes bool          `yaml:"renameReferenceTypes" env:"MIGRATION_RENAME_REFERENCE_TYPES"`
	DryRun               bool          `yaml:"dryRun" env:"MIGRATION_DRY_RUN"`
}

// SchedulerConfig defines when the generation job should run.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled" env:"SCHEDULER_ENABLED"`
	CronExpression string         `yaml:"cronExpression" env:"CRON_EXPRESSION" validate:"required"`
	Timezone       string         `yaml:"timezone" env:"SCHEDULER_TIMEZONE"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServerConfig is the HTTP surface.
type ServerConfig struct {
	Port      int    `yaml:"port" env:"PORT" validate:"gte=1,lte=65535"`
	APISecret string `yaml:"apiSecret" env:"API_SECRET"`
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider        string        `yaml:"provider" env:"LLM_PROVIDER" validate:"oneof=anthropic gemini"`
	Model           string        `yaml:"model" env:"LLM_MODEL" validate:"required"`
	MaxTokens       int           `yaml:"maxTokens" env:"LLM_MAX_TOKENS" validate:"gte=256"`
	Timeout         time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
	AnthropicAPIKey string        `yaml:"anthropicApiKey" env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string        `yaml:"geminiApiKey" env:"GEMINI_API_KEY"`
}

// APIKey returns the key of the selected provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

// StoreConfig selects the content gateway.
type StoreConfig struct {
	Driver     string       `yaml:"driver" env:"STORE_DRIVER" validate:"oneof=badger postgres sanity"`
	BadgerPath string       `yaml:"badgerPath" env:"BADGER_PATH" validate:"required_if=Driver badger"`
	DSN        string       `yaml:"dsn" env:"DATABASE_DSN" validate:"required_if=Driver postgres"`
	Sanity     SanityConfig `yaml:"sanity"`
}

// SanityConfig describes the hosted CMS dataset.
type SanityConfig struct {
	ProjectID  string `yaml:"projectId" env:"SANITY_PROJECT_ID"`
	Dataset    string `yaml:"dataset" env:"SANITY_DATASET"`
	Token      string `yaml:"token" env:"SANITY_API_TOKEN"`
	APIVersion string `yaml:"apiVersion" env:"SANITY_API_VERSION"`
}

// SourcesConfig holds trend source credentials. A source without them is
// reported as disabled.
type SourcesConfig struct {
	TikTok    TikTokConfig    `yaml:"tiktok"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Instagram InstagramConfig `yaml:"instagram"`
}

type TikTokConfig struct {
	ClientKey    string `yaml:"clientKey" env:"TIKTOK_CLIENT_KEY"`
	ClientSecret string `yaml:"clientSecret" env:"TIKTOK_CLIENT_SECRET"`
}

type YouTubeConfig struct {
	APIKey     string `yaml:"apiKey" env:"YOUTUBE_API_KEY"`
	RegionCode string `yaml:"regionCode"`
}

type InstagramConfig struct {
	AccessToken string `yaml:"accessToken" env:"INSTAGRAM_ACCESS_TOKEN"`
}

// UnsplashConfig wires the stock photo provider.
type UnsplashConfig struct {
	AccessKey string `yaml:"accessKey" env:"UNSPLASH_ACCESS_KEY"`
	AppName   string `yaml:"appName"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" env:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chatId" env:"TELEGRAM_CHAT_ID"`
}

// LoggingConfig selects level and the optional rotating file.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Load reads the local .env file, the YAML configuration (if present) and
// environment overrides, then validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", dotEnvFile, err)
	}

	cfg := defaultConfig()
	if path := os.Getenv(configPathEnv); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	cfg.bindTimezone()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and driver-specific requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if c.Store.Driver == StoreSanity && (c.Store.Sanity.ProjectID == "" || c.Store.Sanity.Token == "") {
		return errors.New("config: invalid: sanity store needs projectId and token")
	}
	return nil
}

// mergeFile decodes the YAML document on top of cfg; keys absent from the
// file keep their current values.
func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Generation: GenerationConfig{
			ArticlesToGenerate: trending.DefaultBatchSize,
			MinRelevanceScore:  trending.DefaultMinRelevance,
			RecentDays:         30,
			TopicDelay:         2 * time.Second,
			Keywords:           append([]string(nil), trending.DefaultKeywords...),
		},
		Dedup: DedupConfig{
			MinWordLength: trending.DefaultMinWordLength,
			Threshold:     trending.DefaultDuplicateThreshold,
			PreserveWords: append([]string(nil), trending.DefaultPreserveWords...),
		},
		Migration: MigrationConfig{
			GEO:                  SweepConfig{MaxRecords: 5, SummaryChars: 2500},
			References:           SweepConfig{MaxRecords: 5, SummaryChars: 1000},
			BlogPosts:            SweepConfig{MaxRecords: 5, SummaryChars: 2000},
			ProductsBatch:        50,
			MigrateBlogPosts:     true,
			RecordDelay:          2 * time.Second,
			RunOnStartup:         true,
			RunAfterGeneration:   true,
			RenameReferenceTypes: true,
		},
		Scheduler: SchedulerConfig{Enabled: true, CronExpression: "0 6 * * *", Timezone: defaultTimezone},
		Server:    ServerConfig{Port: 8080},
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4000,
			Timeout:   2 * time.Minute,
		},
		Store: StoreConfig{
			Driver:     StoreBadger,
			BadgerPath: "data/blogengine",
			Sanity:     SanityConfig{Dataset: "production", APIVersion: "2024-01-01"},
		},
		Sources:  SourcesConfig{YouTube: YouTubeConfig{RegionCode: "US"}},
		Unsplash: UnsplashConfig{AppName: "blog_engine"},
		Logging:  LoggingConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 28},
	}
}
