package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Remote    RemoteConfig
	Redis     RedisConfig
	Selection SelectionConfig
	Metrics   MetricsConfig
	Refresh   RefreshConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Remote.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DISCOUNTSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"DISCOUNTSYNC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DISCOUNTSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISCOUNTSYNC_LOG_WARN_STACK" default:"false"`
	Language     string `envconfig:"DISCOUNTSYNC_APP_LANGUAGE" default:"en"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RemoteConfig points the engine at the authoritative discounts backend.
type RemoteConfig struct {
	BaseURL       string        `envconfig:"DISCOUNTSYNC_REMOTE_BASE_URL" required:"true"`
	AuthToken     string        `envconfig:"DISCOUNTSYNC_REMOTE_AUTH_TOKEN"`
	Timeout       time.Duration `envconfig:"DISCOUNTSYNC_REMOTE_TIMEOUT" default:"10s"`
	BodyReadLimit int64         `envconfig:"DISCOUNTSYNC_REMOTE_BODY_READ_LIMIT" default:"4096"`
}

func (r RemoteConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(r.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvRemoteBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvRemoteBaseURL)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", EnvRemoteTimeout)
	}
	return nil
}

// RedisConfig is optional: without a URL or address selections are kept in memory only.
type RedisConfig struct {
	URL          string        `envconfig:"DISCOUNTSYNC_REDIS_URL"`
	Address      string        `envconfig:"DISCOUNTSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"DISCOUNTSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISCOUNTSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISCOUNTSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISCOUNTSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISCOUNTSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISCOUNTSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISCOUNTSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SelectionConfig struct {
	Namespace string        `envconfig:"DISCOUNTSYNC_SELECTION_NAMESPACE" default:"ds"`
	TTL       time.Duration `envconfig:"DISCOUNTSYNC_SELECTION_TTL" default:"720h"`
	Context   string        `envconfig:"DISCOUNTSYNC_SELECTION_CONTEXT" default:"restaurant"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"DISCOUNTSYNC_METRICS_ENABLED" default:"true"`
}

// RefreshConfig enables periodic background refreshes of the active scope when Interval > 0.
type RefreshConfig struct {
	Interval time.Duration `envconfig:"DISCOUNTSYNC_REFRESH_INTERVAL" default:"0s"`
}
