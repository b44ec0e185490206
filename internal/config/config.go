// Package config loads glosstran settings from flags, GLOSSTRAN_* environment
// variables, an optional glosstran.yaml and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "GLOSSTRAN"

// Providers are the provider names Validate accepts.
var Providers = []string{"gemini", "openrouter", "ollama", "google", "mymemory"}

// HistoryBackends are the history storage names Validate accepts.
var HistoryBackends = []string{"sqlite", "redis", "memory"}

type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	Provider          string `mapstructure:"provider"`
	Model             string `mapstructure:"model"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	OpenRouterAPIKey  string `mapstructure:"openrouter_api_key"`
	OpenRouterURL     string `mapstructure:"openrouter_url"`
	OllamaURL         string `mapstructure:"ollama_url"`
	GoogleCredentials string `mapstructure:"google_credentials"`
	MyMemoryEmail     string `mapstructure:"mymemory_email"`

	DB             string        `mapstructure:"db"`
	Cache          bool          `mapstructure:"cache"`
	HistoryBackend string        `mapstructure:"history_backend"`
	RedisURL       string        `mapstructure:"redis_url"`
	Debounce       time.Duration `mapstructure:"debounce"`
	Listen         string        `mapstructure:"listen"`
}

// SetDefaults registers every key with its default so that environment
// variables are seen by Unmarshal even without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("openrouter_url", "")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("google_credentials", "")
	v.SetDefault("mymemory_email", "")
	v.SetDefault("db", "./data/glosstran.db")
	v.SetDefault("cache", true)
	v.SetDefault("history_backend", "sqlite")
	v.SetDefault("redis_url", "")
	v.SetDefault("debounce", 800*time.Millisecond)
	v.SetDefault("listen", "127.0.0.1:8080")
}

// Load reads .env (if present), the optional config file and the environment
// into a validated Config. configFile may be empty to search for
// glosstran.yaml in the working directory.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("glosstran")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.HistoryBackend = strings.ToLower(strings.TrimSpace(cfg.HistoryBackend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !contains(Providers, c.Provider) {
		return fmt.Errorf("provider must be one of %s, got %q", strings.Join(Providers, ", "), c.Provider)
	}
	if !contains(HistoryBackends, c.HistoryBackend) {
		return fmt.Errorf("history_backend must be one of %s, got %q", strings.Join(HistoryBackends, ", "), c.HistoryBackend)
	}
	if c.HistoryBackend == "redis" && strings.TrimSpace(c.RedisURL) == "" {
		return fmt.Errorf("redis_url is required when history_backend is redis")
	}
	if c.HistoryBackend == "sqlite" && strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("db is required when history_backend is sqlite")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	if strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
