// Package config loads the service configuration from environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. HANZI_SERVER_ADDR.
const EnvPrefix = "HANZI"

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Vision   VisionConfig   `mapstructure:"vision"`
	AI       AIConfig       `mapstructure:"ai"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Secret   SecretConfig   `mapstructure:"secret"`
}

// ServerConfig configures the HTTP listener and its middleware.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	RatePerMinute  int      `mapstructure:"rate_per_minute"`
	RateBurst      int      `mapstructure:"rate_burst"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig selects the gorm driver. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"`
	DSN           string        `mapstructure:"dsn"`
	RunMigrations bool          `mapstructure:"run_migrations"`
	ConnectWait   time.Duration `mapstructure:"connect_wait"`
}

// RedisConfig configures the optional Redis cache. An empty Host disables Redis.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// GeminiConfig configures the default recognition backend.
// An empty APIKey leaves the default backend unconfigured.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// VisionConfig toggles the Cloud Vision text reader (uses ADC credentials).
type VisionConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AIConfig holds settings shared by both recognition backends.
type AIConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	ModelListRetry int           `mapstructure:"model_list_retry"`
}

// TTSConfig configures the pronunciation audio source.
type TTSConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// CacheConfig holds cache lifetimes.
type CacheConfig struct {
	ResultTTL time.Duration `mapstructure:"result_ttl"`
	AudioTTL  time.Duration `mapstructure:"audio_ttl"`
}

// LogConfig configures slog. An empty File logs to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SecretConfig holds the passphrase used to seal API keys at rest.
type SecretConfig struct {
	Key string `mapstructure:"key"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.cors_origins":     []string{"*"},
	"server.jwt_secret":       "",
	"server.rate_per_minute":  30,
	"server.rate_burst":       5,
	"server.max_upload_bytes": int64(10 * 1024 * 1024),
	"database.driver":         "sqlite",
	"database.dsn":            "./hanzi.db",
	"database.run_migrations": true,
	"database.connect_wait":   60 * time.Second,
	"redis.host":              "",
	"redis.port":              "6379",
	"redis.password":          "",
	"redis.db":                0,
	"gemini.api_key":          "",
	"gemini.model":            "gemini-2.5-flash",
	"gemini.base_url":         "",
	"vision.enabled":          false,
	"ai.timeout":              30 * time.Second,
	"ai.model_list_retry":     2,
	"tts.base_url":            "https://translate.google.com/translate_tts",
	"tts.language":            "zh-CN",
	"cache.result_ttl":        24 * time.Hour,
	"cache.audio_ttl":         7 * 24 * time.Hour,
	"log.level":               "info",
	"log.file":                "",
	"secret.key":              "",
}

// Load reads configuration into v and returns the decoded Config.
// Values come from defaults, then the config file (if set on v), then HANZI_* environment variables.
// The Gemini key additionally falls back to GEMINI_API_KEY and GOOGLE_API_KEY.
func Load(v *viper.Viper) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind gemini api key: %w", err)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai.timeout must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	return nil
}

// Warn logs configuration that is valid but unsafe or degraded.
func (c *Config) Warn() {
	if c.Server.JWTSecret == "" {
		slog.Warn("HANZI_SERVER_JWT_SECRET is not set; the API is unauthenticated")
	}
	if c.Secret.Key == "" {
		slog.Warn("HANZI_SECRET_KEY is not set; custom API keys are stored in plain text")
	}
	if c.Gemini.APIKey == "" {
		slog.Warn("Gemini API key is not set; only a custom endpoint can be used")
	}
}
