// Package config loads service configuration from YAML with
// environment overrides for the settings that change per deployment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// Mode is the gin run mode: debug, release or test.
	Mode string `yaml:"mode"`
}

type DatabaseConfig struct {
	// Driver selects the rate store backend: memory or postgres.
	Driver string `yaml:"driver"`
	// DSN is the postgres connection string. Required when Driver is postgres.
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	// Addr is host:port. Empty disables the rate cache entirely.
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type AlertsConfig struct {
	// File is the JSON file alert definitions persist to.
	File string `yaml:"file"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File is a log file path. Empty logs to stderr.
	File       string `yaml:"file"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the YAML file at path, fills in defaults and environment
// overrides, and validates the result. An empty path loads pure
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging or printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	var c Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

// applyEnv overlays the deployment environment variables. Environment
// values win over the file so containers can override a baked-in config.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
		c.Database.Driver = "postgres"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 300
	}
	if c.Alerts.File == "" {
		c.Alerts.File = "database/alerts.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode)
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required when database.driver is postgres")
		}
	default:
		return fmt.Errorf("database.driver %q must be memory or postgres", c.Database.Driver)
	}
	if c.Redis.TTLSeconds < 0 {
		return fmt.Errorf("redis.ttl_seconds %d must not be negative", c.Redis.TTLSeconds)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}
	return nil
}
