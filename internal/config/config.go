// Package config loads the address-fields server configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Zero values are replaced by Defaults.
type Config struct {
	Addr          string        `yaml:"addr" json:"addr"`
	BasePath      string        `yaml:"basePath" json:"basePath"`
	DefaultLocale string        `yaml:"defaultLocale" json:"defaultLocale"`
	LocaleCookie  string        `yaml:"localeCookie" json:"localeCookie"`
	CatalogPath   string        `yaml:"catalog" json:"catalog"`
	LogLevel      string        `yaml:"logLevel" json:"logLevel"`
	MetricsPath   string        `yaml:"metricsPath" json:"metricsPath"`
	Redis         RedisConfig   `yaml:"redis" json:"redis"`
	Session       SessionConfig `yaml:"session" json:"session"`
}

// RedisConfig enables the metadata cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// SessionConfig bounds metadata fetches made by resolution sessions.
type SessionConfig struct {
	AttemptTimeout time.Duration `yaml:"attemptTimeout" json:"attemptTimeout"`
	MaxAttempts    int           `yaml:"maxAttempts" json:"maxAttempts"`
}

// Defaults returns the configuration used when no file is supplied.
func Defaults() Config {
	return Config{
		Addr:          ":8080",
		DefaultLocale: "en",
		LocaleCookie:  "language",
		LogLevel:      "info",
		MetricsPath:   "/metrics",
		Redis: RedisConfig{
			Prefix: "addressfields:country:",
			TTL:    24 * time.Hour,
		},
		Session: SessionConfig{
			AttemptTimeout: 5 * time.Second,
			MaxAttempts:    2,
		},
	}
}

// Load reads a YAML or JSON configuration file and fills unset values from
// Defaults. An empty path returns Defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes raw configuration. ext selects the format (".json" for JSON,
// anything else for YAML).
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	if c.Session.MaxAttempts < 0 {
		return fmt.Errorf("config: session.maxAttempts must not be negative")
	}
	if c.Session.AttemptTimeout < 0 {
		return fmt.Errorf("config: session.attemptTimeout must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("config: redis.ttl must not be negative")
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Defaults()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = def.DefaultLocale
	}
	if c.LocaleCookie == "" {
		c.LocaleCookie = def.LocaleCookie
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.MetricsPath == "" {
		c.MetricsPath = def.MetricsPath
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = def.Redis.Prefix
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = def.Redis.TTL
	}
	if c.Session.AttemptTimeout == 0 {
		c.Session.AttemptTimeout = def.Session.AttemptTimeout
	}
	if c.Session.MaxAttempts == 0 {
		c.Session.MaxAttempts = def.Session.MaxAttempts
	}
}
