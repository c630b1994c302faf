// Package config provides unified configuration for the cortex service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (CORTEX_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the cortex service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Reasoner      ReasonerConfig      `yaml:"reasoner"`
	Engine        EngineConfig        `yaml:"engine"`
	History       HistoryConfig       `yaml:"history"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8085
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 180s
}

// ReasonerConfig holds reasoning backend settings.
type ReasonerConfig struct {
	Backend     string  `yaml:"backend"`      // "ollama" or "openai-chat", default: "ollama"
	BackendURL  string  `yaml:"backend_url"`  // required
	APIKey      string  `yaml:"api_key"`      // optional
	APIKeyFile  string  `yaml:"api_key_file"` // _file variant for api_key
	Model       string  `yaml:"model"`        // required
	Temperature float64 `yaml:"temperature"`  // default: 0.2
	MaxTokens   int     `yaml:"max_tokens"`   // optional
}

// EngineConfig holds retry loop and sandbox settings.
type EngineConfig struct {
	MaxAttempts         int           `yaml:"max_attempts"`          // default: 3
	MaxPolicyRejections int           `yaml:"max_policy_rejections"` // default: 2
	HistoryWindow       int           `yaml:"history_window"`        // default: 6
	ResultLimit         int           `yaml:"result_limit"`          // default: 2000
	ExecTimeout         time.Duration `yaml:"exec_timeout"`          // default: 10s
	SessionTTL          time.Duration `yaml:"session_ttl"`           // default: 30m
	MemoryCapacity      int           `yaml:"memory_capacity"`       // default: 256
}

// HistoryConfig holds query audit log settings.
type HistoryConfig struct {
	Type     string         `yaml:"type"`     // "memory" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size"` // for memory store, default: 1024
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8085,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 180 * time.Second,
		},
		Reasoner: ReasonerConfig{
			Backend:     "ollama",
			Temperature: 0.2,
		},
		Engine: EngineConfig{
			MaxAttempts:         3,
			MaxPolicyRejections: 2,
			HistoryWindow:       6,
			ResultLimit:         2000,
			ExecTimeout:         10 * time.Second,
			SessionTTL:          30 * time.Minute,
			MemoryCapacity:      256,
		},
		History: HistoryConfig{
			Type:    "memory",
			MaxSize: 1024,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d is out of range", c.Server.Port)
	}

	switch c.Reasoner.Backend {
	case "ollama", "openai-chat":
	default:
		return fmt.Errorf("reasoner.backend: unknown backend %q", c.Reasoner.Backend)
	}
	if c.Reasoner.BackendURL == "" {
		return fmt.Errorf("reasoner.backend_url is required")
	}
	if c.Reasoner.Model == "" {
		return fmt.Errorf("reasoner.model is required")
	}

	if c.Engine.MaxAttempts < 1 {
		return fmt.Errorf("engine.max_attempts: must be at least 1")
	}

	switch c.History.Type {
	case "memory":
	case "postgres":
		if c.History.Postgres.DSN == "" && c.History.Postgres.DSNFile == "" {
			return fmt.Errorf("history.postgres.dsn is required for history.type=postgres")
		}
	default:
		return fmt.Errorf("history.type: unknown type %q", c.History.Type)
	}

	switch c.Auth.Type {
	case "none":
	case "apikey":
		if len(c.Auth.APIKeys) == 0 {
			return fmt.Errorf("auth.api_keys: at least one key is required for auth.type=apikey")
		}
	default:
		return fmt.Errorf("auth.type: unknown type %q", c.Auth.Type)
	}

	return nil
}
