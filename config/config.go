package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/jonwraymond/gamenetauth/auth"
	"github.com/jonwraymond/gamenetauth/lockout"
	"github.com/jonwraymond/gamenetauth/observe"
	"github.com/jonwraymond/gamenetauth/resilience"
)

// Storage backends for the persistent tier.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Lockout LockoutConfig `yaml:"lockout"`
	Observe ObserveConfig `yaml:"observe"`
}

// APIConfig configures the dashboard API client.
type APIConfig struct {
	BaseURL        string   `yaml:"base_url"`
	Timeout        Duration `yaml:"timeout"`
	MaxAttempts    int      `yaml:"max_attempts"`
	InitialBackoff Duration `yaml:"initial_backoff"`
	MaxBackoff     Duration `yaml:"max_backoff"`
	UserAgent      string   `yaml:"user_agent"`
}

// StorageConfig selects the persistent tier.
type StorageConfig struct {
	// Backend is memory, badger or redis.
	Backend string       `yaml:"backend"`
	Badger  BadgerConfig `yaml:"badger"`
	Redis   RedisConfig  `yaml:"redis"`
}

// BadgerConfig configures the on-disk tier.
type BadgerConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// RedisConfig configures the shared tier.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SessionConfig configures token timing.
type SessionConfig struct {
	CheckInterval Duration `yaml:"check_interval"`
	RefreshWindow Duration `yaml:"refresh_window"`
	ExpiryBuffer  Duration `yaml:"expiry_buffer"`
}

// LockoutConfig configures the login limiter.
type LockoutConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Window      Duration `yaml:"window"`
}

// ObserveConfig configures telemetry.
type ObserveConfig struct {
	ServiceName     string  `yaml:"service_name"`
	LogLevel        string  `yaml:"log_level"`
	TracingExporter string  `yaml:"tracing_exporter"`
	SamplePct       float64 `yaml:"sample_pct"`
	MetricsExporter string  `yaml:"metrics_exporter"`
	SentryDSN       string  `yaml:"sentry_dsn"`
	Environment     string  `yaml:"environment"`
}

// Default returns the built-in configuration. BaseURL is left empty.
func Default() Config {
	return Config{
		API: APIConfig{
			Timeout:        Duration(resilience.DefaultTimeout),
			MaxAttempts:    resilience.DefaultMaxAttempts,
			InitialBackoff: Duration(resilience.DefaultInitialDelay),
			MaxBackoff:     Duration(resilience.DefaultMaxDelay),
			UserAgent:      "gamenetctl",
		},
		Storage: StorageConfig{
			Backend: BackendBadger,
			Badger:  BadgerConfig{Dir: defaultBadgerDir()},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Session: SessionConfig{
			CheckInterval: Duration(auth.DefaultCheckInterval),
			RefreshWindow: Duration(auth.DefaultRefreshWindow),
			ExpiryBuffer:  Duration(auth.DefaultExpiryBuffer),
		},
		Lockout: LockoutConfig{
			MaxAttempts: lockout.DefaultMaxAttempts,
			Window:      Duration(lockout.DefaultWindow),
		},
		Observe: ObserveConfig{
			ServiceName:     "gamenetctl",
			LogLevel:        "warn",
			TracingExporter: "none",
			SamplePct:       1,
			MetricsExporter: "none",
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: api.base_url %q", ErrInvalidValue, c.API.BaseURL)
	}
	if c.API.MaxAttempts < 1 {
		return fmt.Errorf("%w: api.max_attempts must be at least 1", ErrInvalidValue)
	}
	if c.Lockout.MaxAttempts < 1 {
		return fmt.Errorf("%w: lockout.max_attempts must be at least 1", ErrInvalidValue)
	}

	durations := []struct {
		name  string
		value Duration
	}{
		{"api.timeout", c.API.Timeout},
		{"api.initial_backoff", c.API.InitialBackoff},
		{"api.max_backoff", c.API.MaxBackoff},
		{"session.check_interval", c.Session.CheckInterval},
		{"session.refresh_window", c.Session.RefreshWindow},
		{"session.expiry_buffer", c.Session.ExpiryBuffer},
		{"lockout.window", c.Lockout.Window},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s = %s", ErrInvalidDuration, d.name, d.value)
		}
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendBadger:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: storage.redis.addr is required", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	return c.ObserverConfig().Validate()
}

// TokenConfig returns the token lifecycle configuration.
func (c Config) TokenConfig(now func() time.Time) auth.TokenConfig {
	return auth.TokenConfig{
		ExpiryBuffer:  c.Session.ExpiryBuffer.Std(),
		RefreshWindow: c.Session.RefreshWindow.Std(),
		Now:           now,
	}
}

// LimiterConfig returns the limiter configuration.
func (c Config) LimiterConfig(now func() time.Time) lockout.Config {
	return lockout.Config{
		MaxAttempts: c.Lockout.MaxAttempts,
		Window:      c.Lockout.Window.Std(),
		Now:         now,
	}
}

// ObserverConfig returns the telemetry configuration.
func (c Config) ObserverConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   o.TracingExporter != "" && o.TracingExporter != "none",
			Exporter:  o.TracingExporter,
			SamplePct: o.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.MetricsExporter != "" && o.MetricsExporter != "none",
			Exporter: o.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   o.LogLevel,
		},
		Sentry: observe.SentryConfig{
			DSN:         o.SentryDSN,
			Environment: o.Environment,
		},
	}
}
