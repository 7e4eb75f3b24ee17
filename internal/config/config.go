package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "TOPIC_CURATOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	oracleAPIKeyEnv   = "ORACLE_API_KEY"
	oracleModelEnv    = "ORACLE_MODEL"
	oracleBaseURLEnv  = "ORACLE_BASE_URL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig      `yaml:"database"`
	Logging   LoggingConfig       `yaml:"logging"`
	Oracle    OracleConfig        `yaml:"oracle"`
	Telegram  TelegramConfig      `yaml:"telegram"`
	Scheduler SchedulerConfig     `yaml:"scheduler"`
	Feeds     map[string][]string `yaml:"feeds"`
	Sites     []SiteConfig        `yaml:"sites"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// selects the in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OracleConfig defines how to contact the text-completion service.
// BaseURL allows pointing the client at any OpenAI-compatible endpoint.
type OracleConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// TelegramConfig wires all data required for review notifications.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   int64  `yaml:"chatId"`
}

// SchedulerConfig defines the discovery run period.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// SiteConfig describes a single scraped site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Vertical   string            `yaml:"vertical"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoints to crawl (e.g., arXiv category URLs).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(oracleAPIKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}

	if v := os.Getenv(oracleModelEnv); v != "" {
		c.Oracle.Model = v
	}

	if v := os.Getenv(oracleBaseURLEnv); v != "" {
		c.Oracle.BaseURL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err != nil {
			log.Printf("config: invalid %s: %v", telegramChatIDEnv, err)
		} else {
			c.Telegram.ChatID = id
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Oracle.BaseURL != "" {
		base.Oracle.BaseURL = override.Oracle.BaseURL
	}
	if override.Oracle.Model != "" {
		base.Oracle.Model = override.Oracle.Model
	}
	if override.Oracle.APIKey != "" {
		base.Oracle.APIKey = override.Oracle.APIKey
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != 0 {
		base.Telegram.ChatID = override.Telegram.ChatID
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Logging:  LoggingConfig{Level: "info"},
		Oracle: OracleConfig{
			BaseURL: "",
			Model:   "gpt-4o-mini",
			APIKey:  "",
		},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour},
		Feeds: map[string][]string{
			"ai": {
				"https://arxiv.org/rss/cs.AI",
				"https://arxiv.org/rss/cs.LG",
				"https://bair.berkeley.edu/blog/feed.xml",
			},
			"tech": {
				"https://news.ycombinator.com/rss",
				"https://lobste.rs/rss",
			},
		},
		Sites: []SiteConfig{
			{
				Name:     "arxiv-ai",
				Scanner:  "arxiv",
				Vertical: "ai",
				Categories: []CategoryConfig{
					{Name: "cs.AI", URL: "https://export.arxiv.org/list/cs.AI/pastweek"},
				},
			},
		},
	}
}
