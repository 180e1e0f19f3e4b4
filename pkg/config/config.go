// Package config loads and validates the planner's YAML configuration.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/closgen/closgen/pkg/routing"
	"github.com/closgen/closgen/pkg/util"
)

// Config is the planner's structured configuration.
type Config struct {
	K        int         `yaml:"k"`
	Strategy string      `yaml:"strategy,omitempty"`
	LogLevel string      `yaml:"log_level,omitempty"`
	Redis    RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig points the provision command at a Redis database.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db,omitempty"`
}

// Default returns a config with defaults applied, without a degree set.
func Default() *Config {
	return &Config{
		Strategy: string(routing.SinglePath),
		LogLevel: "info",
		Redis:    RedisConfig{Addr: "localhost:6379"},
	}
}

// Load reads and validates a config file. Unknown fields are rejected
// so typos fail loudly instead of silently falling back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.K < 2 || c.K%2 != 0 {
		reason := "must be at least 2"
		if c.K >= 2 {
			reason = "must be even"
		}
		return util.NewTopologyParameterError(c.K, reason)
	}

	v := &util.ValidationBuilder{}
	if _, err := routing.ParseStrategy(c.Strategy); err != nil {
		v.AddErrorf("strategy: %v", err)
	}
	if c.LogLevel != "" {
		switch c.LogLevel {
		case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		default:
			v.AddErrorf("log_level: unknown level %q", c.LogLevel)
		}
	}
	v.Add(c.Redis.DB >= 0, "redis.db: must not be negative")
	return v.Build()
}

// ParsedStrategy returns the validated uplink strategy.
func (c *Config) ParsedStrategy() routing.Strategy {
	s, err := routing.ParseStrategy(c.Strategy)
	if err != nil {
		return routing.SinglePath
	}
	return s
}
