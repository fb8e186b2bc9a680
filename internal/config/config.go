// Package config loads the YAML configuration for the fraud pipeline,
// with FRAUD_-prefixed environment variable overrides layered on top,
// following the same defaults-then-overrides shape the rest of the
// corpus uses for its own YAML configs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the fraud pipeline server.
type Config struct {
	Listen      string          `yaml:"listen"`
	Environment string          `yaml:"environment"` // "development" or "production"
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Evaluator   EvaluatorConfig `yaml:"evaluator"`
	Storage     StorageConfig   `yaml:"storage"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	WebSocket   WebSocketConfig `yaml:"websocket"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// RateLimitConfig configures the per-session sliding-window limiter.
type RateLimitConfig struct {
	Enabled              bool `yaml:"enabled"`
	MaxRequestsPerMinute int  `yaml:"maxRequestsPerMinute"`
}

// EvaluatorConfig configures the fraud evaluator.
type EvaluatorConfig struct {
	ModelVersion string `yaml:"modelVersion"`
	MockScorer   bool   `yaml:"mockScorer"` // wire the bundled MockScorer in addition to the rule engine
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Backend string       `yaml:"backend"` // "memory", "sqlite", or "redis"
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
}

// SQLiteConfig configures the optional archival store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the optional distributed store backend.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"keyPrefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
	Insecure    bool   `yaml:"insecure"`
}

// WebSocketConfig configures the streaming ingestion endpoint.
type WebSocketConfig struct {
	Enabled          bool          `yaml:"enabled"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
	MaxMessageBytes  int64         `yaml:"maxMessageBytes"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
	JSON  bool   `yaml:"json"`
}

// Load reads path as YAML over top of Defaults(), then applies
// FRAUD_-prefixed environment overrides. A missing file is not an
// error — Defaults() is returned as-is (minus env overrides).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- config path from trusted CLI flag
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the baseline configuration used when no config file
// is present and no environment overrides are set.
func Defaults() *Config {
	return &Config{
		Listen:      ":8080",
		Environment: "production",
		RateLimit: RateLimitConfig{
			Enabled:              true,
			MaxRequestsPerMinute: 100,
		},
		Evaluator: EvaluatorConfig{
			ModelVersion: "1.0.0-dev",
			MockScorer:   true,
		},
		Storage: StorageConfig{
			Backend: "memory",
			SQLite: SQLiteConfig{
				Path: "data/fraud-archive.db",
			},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "fraud:",
				TTL:       24 * time.Hour,
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Exporter:    "none",
			ServiceName: "fraud-pipeline",
		},
		WebSocket: WebSocketConfig{
			Enabled:          true,
			HandshakeTimeout: 10 * time.Second,
			MaxMessageBytes:  1 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FRAUD_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("FRAUD_ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("FRAUD_RATE_LIMIT_MAX_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.MaxRequestsPerMinute = n
		}
	}
	if os.Getenv("FRAUD_RATE_LIMIT_ENABLED") == "false" {
		c.RateLimit.Enabled = false
	}
	if v := os.Getenv("FRAUD_EVALUATOR_MODEL_VERSION"); v != "" {
		c.Evaluator.ModelVersion = v
	}
	if v := os.Getenv("FRAUD_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("FRAUD_STORAGE_SQLITE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("FRAUD_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("FRAUD_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if os.Getenv("FRAUD_TELEMETRY_ENABLED") == "true" {
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("FRAUD_TELEMETRY_EXPORTER"); v != "" {
		c.Telemetry.Exporter = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
	if v := os.Getenv("FRAUD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.RateLimit.Enabled && c.RateLimit.MaxRequestsPerMinute <= 0 {
		return fmt.Errorf("rateLimit.maxRequestsPerMinute must be positive when rateLimit is enabled")
	}
	return nil
}

// DebugEndpointsEnabled reports whether the development-only debug
// surface should be registered.
func (c *Config) DebugEndpointsEnabled() bool {
	return c.Environment == "development"
}
