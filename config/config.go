// Package config loads server configuration from a YAML file, with sane
// defaults so the server runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TechTreck-2/petruzdroba/leave"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Mail     MailConfig     `yaml:"mail"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LedgerConfig struct {
	// DefaultAllotmentMS is the leave budget seeded for an employee whose
	// balance has never been touched.
	DefaultAllotmentMS int64 `yaml:"default_allotment_ms"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Addr returns the host:port SMTP relay address.
func (m MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

type SweepConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`

	Interval time.Duration `yaml:"-"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path: "timeoff.db",
		},
		Ledger: LedgerConfig{
			DefaultAllotmentMS: leave.DefaultAllotmentMS,
		},
		Sweep: SweepConfig{
			Enabled:         true,
			IntervalSeconds: 3600,
		},
	}
}

// Load reads the YAML config at path, layered over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Sweep.Interval = time.Duration(cfg.Sweep.IntervalSeconds) * time.Second
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Ledger.DefaultAllotmentMS <= 0 {
		return fmt.Errorf("default allotment must be positive, got %d", c.Ledger.DefaultAllotmentMS)
	}
	if c.Sweep.Enabled && c.Sweep.IntervalSeconds <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %d", c.Sweep.IntervalSeconds)
	}
	return nil
}
