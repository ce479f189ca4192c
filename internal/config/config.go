package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type OpenRouterConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type SchedulerConfig struct {
	TickSeconds int `mapstructure:"tick_seconds"`
}

// Load reads the optional YAML file and environment overrides. Missing
// credentials are a startup failure, not a runtime one.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.dsn", "tasks.db")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-3.5-turbo")
	v.SetDefault("openrouter.max_tokens", 700)
	v.SetDefault("openrouter.temperature", 0.1)
	v.SetDefault("scheduler.tick_seconds", 60)

	v.AutomaticEnv()

	// The config file is optional; env-only deployments are fine.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if token := v.GetString("BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if key := v.GetString("OPENROUTER_API_KEY"); key != "" {
		cfg.OpenRouter.APIKey = key
	}
	if dsn := v.GetString("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set (BOT_TOKEN)")
	}
	if cfg.OpenRouter.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}

	return &cfg, nil
}
