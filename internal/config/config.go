package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const (
	StorageKeyring = "keyring"
	StorageRedis   = "redis"
	StorageMemory  = "memory"
)

type Config struct {
	APIBaseURL              string `env:"USTAM_API_BASE_URL,required=true"`
	RequestTimeoutMS        int    `env:"USTAM_REQUEST_TIMEOUT_MS,default=30000"`
	RetryAttempts           int    `env:"USTAM_RETRY_ATTEMPTS,default=1"`
	RetryDelayMS            int    `env:"USTAM_RETRY_DELAY_MS,default=500"`
	LogLevel                string `env:"USTAM_LOG_LEVEL,default=info"`
	StorageBackend          string `env:"USTAM_STORAGE_BACKEND,default=keyring"`
	KeyringDir              string `env:"USTAM_KEYRING_DIR,default=~/.config/ustamapp"`
	RedisURL                string `env:"USTAM_REDIS_URL"`
	RabbitMQURL             string `env:"USTAM_RABBITMQ_URL"`
	NotificationPollSeconds int    `env:"USTAM_NOTIFICATION_POLL_SECONDS,default=30"`
	AnalyticsEnabled        bool   `env:"USTAM_ANALYTICS_ENABLED,default=true"`
	AnalyticsBuffer         int    `env:"USTAM_ANALYTICS_BUFFER,default=256"`
	MockAPIPort             int    `env:"USTAM_MOCKAPI_PORT,default=5000"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("failed to load config: USTAM_API_BASE_URL is required")
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	switch cfg.StorageBackend {
	case StorageKeyring, StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("failed to load config: USTAM_REDIS_URL is required for redis storage")
		}
	default:
		return nil, fmt.Errorf("failed to load config: unsupported storage backend %q", cfg.StorageBackend)
	}

	return &cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c *Config) NotificationPollInterval() time.Duration {
	return time.Duration(c.NotificationPollSeconds) * time.Second
}

// MockAPIConfig configures cmd/mockapi. Redis and RabbitMQ are optional.
type MockAPIConfig struct {
	Port            int    `env:"USTAM_MOCKAPI_PORT,default=5000"`
	LogLevel        string `env:"USTAM_LOG_LEVEL,default=info"`
	RedisURL        string `env:"USTAM_REDIS_URL"`
	RabbitMQURL     string `env:"USTAM_RABBITMQ_URL"`
	RateLimit       int    `env:"USTAM_MOCKAPI_RATE_LIMIT,default=20"`
	RateLimitWindow int    `env:"USTAM_MOCKAPI_RATE_WINDOW_SECONDS,default=60"`
}

func LoadMockAPI() (*MockAPIConfig, error) {
	var cfg MockAPIConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load mockapi config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("failed to load mockapi config: invalid port %d", cfg.Port)
	}
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.RabbitMQURL = strings.TrimSpace(cfg.RabbitMQURL)
	return &cfg, nil
}

func (c *MockAPIConfig) RateWindow() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}
