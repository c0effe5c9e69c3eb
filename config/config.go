package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Segmenter  SegmenterConfig  `mapstructure:"segmenter"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug bool `mapstructure:"debug"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
}

func (c TelegramConfig) Validate() error {
	if c.Enabled && strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("telegram.token is required when telegram is enabled")
	}
	return nil
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig selects and configures the generation provider.
type LLMConfig struct {
	Provider string            `mapstructure:"provider"` // gemini or openai
	Gemini   LLMProviderConfig `mapstructure:"gemini"`
	OpenAI   LLMProviderConfig `mapstructure:"openai"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

// LLMProviderConfig holds the credentials and model for one provider.
type LLMProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("llm.gemini.api_key is required when using the gemini provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("llm.openai.api_key is required when using the openai provider")
		}
	default:
		return fmt.Errorf("invalid llm.provider: %s", c.Provider)
	}
	return nil
}

// TranscriptConfig configures transcript fetching.
type TranscriptConfig struct {
	Languages []string      `mapstructure:"languages"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// StorageConfig selects the durable session backend.
type StorageConfig struct {
	Backend    string         `mapstructure:"backend"` // memory, sqlite, redis or postgres
	SessionTTL time.Duration  `mapstructure:"session_ttl"`
	SweepCron  string         `mapstructure:"sweep_cron"` // empty disables the sweeper
	SQLite     SQLiteConfig   `mapstructure:"sqlite"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN assembles the connection string, preferring an explicit URL.
func (c PostgresConfig) DSN() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}
	if c.Host == "" || c.DBName == "" {
		return "", errors.New("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, port, c.DBName, ssl), nil
}

func (c StorageConfig) Validate() error {
	switch c.Backend {
	case "memory", "sqlite", "redis", "postgres":
	default:
		return fmt.Errorf("invalid storage.backend: %s", c.Backend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("storage.session_ttl must be positive")
	}
	return nil
}

// LimitsConfig configures the sliding-window rate limiter.
type LimitsConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

func (c LimitsConfig) Validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("limits.max_requests must be positive")
	}
	if c.Window <= 0 {
		return fmt.Errorf("limits.window must be positive")
	}
	return nil
}

// SegmenterConfig configures the transcript splitter. An overlap that is not
// strictly smaller than the size is rejected here, before anything runs.
type SegmenterConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

func (c SegmenterConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("segmenter.size must be positive")
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("segmenter.overlap must be in [0, size), got overlap=%d size=%d", c.Overlap, c.Size)
	}
	return nil
}

// Load reads configuration from a JSON file and YTASSIST_* environment
// variables. When path is empty the usual locations are searched and a
// missing file is tolerated (environment-only setups).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.debug", false)
	v.SetDefault("telegram.enabled", true)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", time.Minute)
	v.SetDefault("transcript.languages", []string{"en", "hi"})
	v.SetDefault("transcript.timeout", 30*time.Second)
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.session_ttl", 24*time.Hour)
	v.SetDefault("storage.sweep_cron", "0 * * * *")
	v.SetDefault("storage.sqlite.path", "data/sessions.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("limits.max_requests", 30)
	v.SetDefault("limits.window", 60*time.Second)
	v.SetDefault("segmenter.size", 800)
	v.SetDefault("segmenter.overlap", 100)

	if path == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("YTASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	for _, validate := range []func() error{
		cfg.Telegram.Validate,
		cfg.LLM.Validate,
		cfg.Storage.Validate,
		cfg.Limits.Validate,
		cfg.Segmenter.Validate,
	} {
		if err := validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
