// Package config provides YAML-backed configuration loading for m2m
// deployments: which security mode and token-dictionary encoding to use
// by default, where key material is persisted, and how logging and
// metrics are exposed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level m2m configuration document.
type Config struct {
	Org      string         `yaml:"org" json:"org"`
	M2M      M2MConfig      `yaml:"m2m" json:"m2m"`
	KeyStore KeyStoreConfig `yaml:"keystore" json:"keystore"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// M2MConfig holds wire-protocol defaults. setDefaults fills them in, but
// nothing else in this module reads them; m2mctl's frame commands always
// use cl100k_base.
type M2MConfig struct {
	DefaultSecurityMode string        `yaml:"default_security_mode" json:"default_security_mode"` // none, hmac, aead
	DefaultEncoding      string        `yaml:"default_encoding" json:"default_encoding"`             // cl100k_base, o200k_base
	EnableCompression    bool          `yaml:"enable_compression" json:"enable_compression"`
	SessionKeyTTL        time.Duration `yaml:"session_key_ttl" json:"session_key_ttl"`
	ReplayWindowSize     int           `yaml:"replay_window_size" json:"replay_window_size"`
}

// KeyStoreConfig selects and configures the keyring.Store backend.
type KeyStoreConfig struct {
	Type     string         `yaml:"type" json:"type"` // memory, postgres
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

// PostgresConfig mirrors keyring/postgres.Config; duplicated here
// rather than imported so config has no dependency on pgx.
type PostgresConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Database string `yaml:"database" json:"database"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`
}

// LoggingConfig controls internal/logger's default logger.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
}

// MetricsConfig holds an enable switch and a listen address for
// internal/metrics.StartServer; no code in this module reads it or calls
// StartServer.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// LoadFromFile reads and parses a YAML config file, applying defaults
// to any field left unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile marshals cfg as YAML and writes it to path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Default returns a Config populated entirely with defaults, for
// callers that have no config file and do not want one.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.M2M.DefaultSecurityMode == "" {
		cfg.M2M.DefaultSecurityMode = "aead"
	}
	if cfg.M2M.DefaultEncoding == "" {
		cfg.M2M.DefaultEncoding = "cl100k_base"
	}
	if cfg.M2M.SessionKeyTTL == 0 {
		cfg.M2M.SessionKeyTTL = 1 * time.Hour
	}
	if cfg.M2M.ReplayWindowSize == 0 {
		cfg.M2M.ReplayWindowSize = 1024
	}
	if cfg.KeyStore.Type == "" {
		cfg.KeyStore.Type = "memory"
	}
	if cfg.KeyStore.Postgres.SSLMode == "" {
		cfg.KeyStore.Postgres.SSLMode = "disable"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
}
