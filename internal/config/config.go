package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Redis, shared by the response cache and the redis session store
	CacheEnabled  bool          `envconfig:"CACHE_ENABLED" default:"false"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	// Crawling
	CrawlTimeout   time.Duration `envconfig:"CRAWL_TIMEOUT" default:"45s"`
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"8"`
	SearchTimeout  time.Duration `envconfig:"SEARCH_TIMEOUT" default:"0s"`
	ResultLimit    int           `envconfig:"RESULT_LIMIT" default:"10"`
	UseProxy       bool          `envconfig:"USE_PROXY" default:"false"`
	ProxyFile      string        `envconfig:"PROXY_FILE" default:"proxies.toml"`
	UserAgent      string        `envconfig:"USER_AGENT"`

	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryMultiplier  time.Duration `envconfig:"RETRY_MULTIPLIER" default:"2s"`
	RetryMinWait     time.Duration `envconfig:"RETRY_MIN_WAIT" default:"4s"`
	RetryMaxWait     time.Duration `envconfig:"RETRY_MAX_WAIT" default:"60s"`

	ProviderRPS   float64 `envconfig:"PROVIDER_RPS" default:"2"`
	ProviderBurst int     `envconfig:"PROVIDER_BURST" default:"4"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("configuration: SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("configuration: MAX_CONCURRENCY must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("configuration: RETRY_MAX_ATTEMPTS must be positive")
	}
	if c.RetryMaxWait < c.RetryMinWait {
		return fmt.Errorf("configuration: RETRY_MAX_WAIT must not be below RETRY_MIN_WAIT")
	}
	return nil
}

// NeedsRedis reports whether any component is backed by redis.
func (c *Config) NeedsRedis() bool {
	return c.CacheEnabled || c.SessionBackend == "redis"
}
