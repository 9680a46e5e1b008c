package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Redis       RedisConfig     `mapstructure:"redis"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Webhook     WebhookConfig   `mapstructure:"webhook"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Security    SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key" json:"-" yaml:"-"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"`
}

type WebhookConfig struct {
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret" json:"-" yaml:"-"`
	Timeout int    `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type CacheConfig struct {
	AnalysisTTL string `mapstructure:"analysis_ttl"`
}

type SecurityConfig struct {
	APIToken string `mapstructure:"api_token" json:"-" yaml:"-"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind the credentials that are conventionally passed as flat env vars
	bindings := map[string]string{
		"openai.api_key":     "OPENAI_API_KEY",
		"security.api_token": "API_TOKEN",
		"webhook.url":        "WEBHOOK_URL",
		"webhook.secret":     "WEBHOOK_SECRET",
	}
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	// Validate analysis TTL duration
	if config.Cache.AnalysisTTL != "" {
		if _, err := time.ParseDuration(config.Cache.AnalysisTTL); err != nil {
			return nil, fmt.Errorf("invalid analysis TTL duration: %w", err)
		}
	}

	if config.RateLimit.Limit <= 0 || config.RateLimit.WindowSeconds <= 0 {
		return nil, fmt.Errorf("rate limit and window must be positive, got limit=%d window=%d",
			config.RateLimit.Limit, config.RateLimit.WindowSeconds)
	}

	return &config, nil
}

// AnalysisTTLDuration returns the parsed cache TTL, falling back to 12 hours.
func (c *Config) AnalysisTTLDuration() time.Duration {
	if c.Cache.AnalysisTTL == "" {
		return 12 * time.Hour
	}
	ttl, err := time.ParseDuration(c.Cache.AnalysisTTL)
	if err != nil {
		return 12 * time.Hour
	}
	return ttl
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// OpenAI
	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4")
	viper.SetDefault("openai.max_tokens", 200)
	viper.SetDefault("openai.temperature", 0.1)
	viper.SetDefault("openai.timeout", 10)

	// Webhook
	viper.SetDefault("webhook.url", "")
	viper.SetDefault("webhook.secret", "")
	viper.SetDefault("webhook.timeout", 10)

	// Rate limiting
	viper.SetDefault("rate_limit.limit", 100)
	viper.SetDefault("rate_limit.window_seconds", 3600)

	// Cache
	viper.SetDefault("cache.analysis_ttl", "12h")

	// Security
	viper.SetDefault("security.api_token", "")
}
