package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Retention RetentionConfig `koanf:"retention"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// TracingConfig is the recording pipeline's read-only surface.
// WebhookDuplicateWindowSeconds is carried for the webhook-capture
// collaborator; no component here reads it beyond validation.
type TracingConfig struct {
	Enabled                       bool     `koanf:"enabled"`
	Async                         bool     `koanf:"async"`
	SensitiveFields               []string `koanf:"sensitive_fields"`
	MaxRedactionDepth             int      `koanf:"max_redaction_depth"`
	SlowResponseThresholdMs       int64    `koanf:"slow_response_threshold_ms"`
	LatencyThresholdMs            int64    `koanf:"latency_threshold_ms"`
	OrphanWindowSeconds           int      `koanf:"orphan_window_seconds"`
	WebhookDuplicateWindowSeconds int      `koanf:"webhook_duplicate_window_seconds"`
	QueueSize                     int      `koanf:"queue_size"`
}

type RetentionConfig struct {
	Enabled    bool   `koanf:"enabled"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Interval   string `koanf:"interval"`
	ChunkSize  int    `koanf:"chunk_size"`
}

// PruneInterval parses the retention sweep interval.
func (c RetentionConfig) PruneInterval() (time.Duration, error) {
	return time.ParseDuration(c.Interval)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	if c.Tracing.MaxRedactionDepth <= 0 {
		return fmt.Errorf("tracing.max_redaction_depth must be > 0")
	}
	if c.Tracing.SlowResponseThresholdMs <= 0 {
		return fmt.Errorf("tracing.slow_response_threshold_ms must be > 0")
	}
	if c.Tracing.LatencyThresholdMs <= 0 {
		return fmt.Errorf("tracing.latency_threshold_ms must be > 0")
	}
	if c.Tracing.OrphanWindowSeconds <= 0 {
		return fmt.Errorf("tracing.orphan_window_seconds must be > 0")
	}
	if c.Tracing.WebhookDuplicateWindowSeconds <= 0 {
		return fmt.Errorf("tracing.webhook_duplicate_window_seconds must be > 0")
	}
	if c.Tracing.QueueSize <= 0 {
		return fmt.Errorf("tracing.queue_size must be > 0")
	}

	if c.Retention.Enabled {
		if c.Retention.MaxAgeDays <= 0 {
			return fmt.Errorf("retention.max_age_days must be > 0")
		}
		interval, err := c.Retention.PruneInterval()
		if err != nil {
			return fmt.Errorf("invalid retention.interval %q: %w", c.Retention.Interval, err)
		}
		if interval <= 0 {
			return fmt.Errorf("retention.interval must be > 0")
		}
		if c.Retention.ChunkSize <= 0 {
			return fmt.Errorf("retention.chunk_size must be > 0")
		}
	}

	return nil
}

// Load parses config from an optional YAML file plus PAYTRACE_ env vars,
// applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                              8080,
		"server.host":                              "0.0.0.0",
		"server.max_body_size_mb":                  1,
		"server.mode":                              "release",
		"database.dsn":                             "",
		"database.max_open_conns":                  25,
		"database.max_idle_conns":                  25,
		"database.auto_migrate":                    true,
		"tracing.enabled":                          true,
		"tracing.async":                            false,
		"tracing.sensitive_fields":                 []string{"card_number", "cvv", "pan", "secret", "token", "password", "authorization"},
		"tracing.max_redaction_depth":              8,
		"tracing.slow_response_threshold_ms":       5000,
		"tracing.latency_threshold_ms":             5000,
		"tracing.orphan_window_seconds":            60,
		"tracing.webhook_duplicate_window_seconds": 300,
		"tracing.queue_size":                       1024,
		"retention.enabled":                        true,
		"retention.max_age_days":                   90,
		"retention.interval":                       "1h",
		"retention.chunk_size":                     500,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("PAYTRACE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "PAYTRACE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
