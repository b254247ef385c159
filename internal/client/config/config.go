package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const EnvConfigPath = "LINGUA_CONFIG"

// Config holds runtime settings for the Lingua client.
type Config struct {
	APIBaseURL    string `env:"LINGUA_API_URL"`
	SocketURL     string `env:"LINGUA_SOCKET_URL"`
	RealtimeURL   string `env:"LINGUA_REALTIME_URL"`
	RealtimeModel string `env:"LINGUA_REALTIME_MODEL"`

	RequestTimeout time.Duration `env:"LINGUA_REQUEST_TIMEOUT"`
	// AutoRefresh replays a request once after rotating tokens on 401.
	AutoRefresh bool `env:"LINGUA_AUTO_REFRESH"`

	DatabasePath  string        `env:"LINGUA_DB_PATH"`
	CacheTTL      time.Duration `env:"LINGUA_CACHE_TTL"`
	StorageSecret string        `env:"LINGUA_STORAGE_SECRET"`

	BreakerThreshold  int           `env:"LINGUA_BREAKER_THRESHOLD"`
	BreakerCooldown   time.Duration `env:"LINGUA_BREAKER_COOLDOWN"`
	StatePollInterval time.Duration `env:"LINGUA_STATE_POLL_INTERVAL"`

	LogLevel    string `env:"LINGUA_LOG_LEVEL"`
	LogFormat   string `env:"LINGUA_LOG_FORMAT"`
	PushToken   string `env:"LINGUA_PUSH_TOKEN"`
	MetricsAddr string `env:"LINGUA_METRICS_ADDR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:3000"
	c.SocketURL = "ws://127.0.0.1:3000"
	c.RealtimeURL = "wss://api.openai.com/v1/realtime"
	c.RealtimeModel = "gpt-4o-realtime-preview"
	c.RequestTimeout = 30 * time.Second
	c.AutoRefresh = false
	c.DatabasePath = "lingua.db"
	c.CacheTTL = 5 * time.Minute
	c.StorageSecret = "lingua-local"
	c.BreakerThreshold = 3
	c.BreakerCooldown = 30 * time.Second
	c.StatePollInterval = 2 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.PushToken = ""
	c.MetricsAddr = ""
}

// LoadEnv overlays fields whose environment variables are set. Unset
// variables leave the current value alone.
func (c *Config) LoadEnv() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}

// Validate rejects configurations the client cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.APIBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api_base_url %q must be an absolute http(s) URL", c.APIBaseURL))
	}
	if c.SocketURL != "" {
		if u, err := url.Parse(c.SocketURL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("socket_url %q must be an absolute URL", c.SocketURL))
		}
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("cache_ttl must be positive"))
	}
	if c.BreakerThreshold < 1 {
		errs = append(errs, errors.New("breaker_threshold must be at least 1"))
	}
	if c.BreakerCooldown <= 0 {
		errs = append(errs, errors.New("breaker_cooldown must be positive"))
	}
	if c.StatePollInterval <= 0 {
		errs = append(errs, errors.New("state_poll_interval must be positive"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database_path is required"))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, the JSON file at path (falling back to
// $LINGUA_CONFIG), the environment and finally flag overrides. o may be nil.
func Load(path string, o *Overrides) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.LoadJSON(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	o.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
