// Package config loads and validates redkeeper configuration from a YAML
// file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by normalize for unset values.
const (
	DefaultHost                 = "localhost"
	DefaultPort                 = 6379
	DefaultKeepAliveMs          = 30000
	DefaultCommandTimeoutMs     = 5000
	DefaultMaxRetriesPerCommand = 3
	DefaultHTTPPort             = 8080
)

// Config is the top-level redkeeper configuration.
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// CacheConfig configures the cache backend connection.
type CacheConfig struct {
	// Enabled toggles the whole cache subsystem. When false the factory
	// returns no client and the process runs without a cache connection.
	Enabled *bool `yaml:"enabled"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`

	// KeepAliveMs and MaxRetriesPerCommand distinguish unset from an
	// explicit zero: absent means the default, zero disables the feature.
	KeepAliveMs          *int `yaml:"keep_alive_ms"`
	CommandTimeoutMs     int  `yaml:"command_timeout_ms"`
	MaxRetriesPerCommand *int `yaml:"max_retries_per_command"`

	// ReadyCheck verifies the server answers PING before the connection is
	// considered ready. Disable only for restricted proxies that reject it.
	ReadyCheck *bool `yaml:"ready_check"`

	// AutoPipelining batches health probes through a single pipeline.
	AutoPipelining bool `yaml:"auto_pipelining"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ServerConfig configures the HTTP observability endpoint.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// IsEnabled reports whether the cache subsystem is switched on.
// An absent flag means enabled.
func (c CacheConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ReadyCheckEnabled reports whether the pre-ready PING check is active.
// An absent flag means enabled.
func (c CacheConfig) ReadyCheckEnabled() bool {
	return c.ReadyCheck == nil || *c.ReadyCheck
}

// Addr returns the host:port address of the cache backend.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeepAlive returns the keep-alive interval as a duration. An absent
// setting falls back to the default; an explicit zero disables keep-alive
// probing.
func (c CacheConfig) KeepAlive() time.Duration {
	if c.KeepAliveMs == nil {
		return DefaultKeepAliveMs * time.Millisecond
	}
	return time.Duration(*c.KeepAliveMs) * time.Millisecond
}

// MaxRetries returns the per-command retry limit. An absent setting falls
// back to the default; an explicit zero disables per-command retries.
func (c CacheConfig) MaxRetries() int {
	if c.MaxRetriesPerCommand == nil {
		return DefaultMaxRetriesPerCommand
	}
	return *c.MaxRetriesPerCommand
}

// CommandTimeout returns the per-command timeout as a duration.
func (c CacheConfig) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutMs) * time.Millisecond
}

// Default returns a configuration with all defaults applied.
func Default() Config {
	cfg := Config{}
	cfg.normalize()
	return cfg
}

// Load reads configuration from the given YAML file, applies environment
// overrides, fills defaults, and validates the result.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays REDKEEPER_* environment variables on the configuration.
func (c *Config) applyEnv() {
	if v, ok := lookupBool("REDKEEPER_CACHE_ENABLED"); ok {
		c.Cache.Enabled = &v
	}
	if v := os.Getenv("REDKEEPER_REDIS_HOST"); v != "" {
		c.Cache.Host = v
	}
	if v, ok := lookupInt("REDKEEPER_REDIS_PORT"); ok {
		c.Cache.Port = v
	}
	if v := os.Getenv("REDKEEPER_REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("REDKEEPER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v, ok := lookupBool("REDKEEPER_LOG_PRETTY"); ok {
		c.Log.Pretty = v
	}
	if v, ok := lookupInt("REDKEEPER_HTTP_PORT"); ok {
		c.Server.Port = v
	}
}

// normalize fills in defaults for unset values.
func (c *Config) normalize() {
	if c.Cache.Host == "" {
		c.Cache.Host = DefaultHost
	}
	if c.Cache.Port == 0 {
		c.Cache.Port = DefaultPort
	}
	if c.Cache.CommandTimeoutMs == 0 {
		c.Cache.CommandTimeoutMs = DefaultCommandTimeoutMs
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultHTTPPort
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if c.Cache.Port < 1 || c.Cache.Port > 65535 {
		return fmt.Errorf("cache.port must be in 1..65535 (got %d)", c.Cache.Port)
	}
	if c.Cache.KeepAliveMs != nil && *c.Cache.KeepAliveMs < 0 {
		return fmt.Errorf("cache.keep_alive_ms must not be negative (got %d)", *c.Cache.KeepAliveMs)
	}
	if c.Cache.CommandTimeoutMs <= 0 {
		return fmt.Errorf("cache.command_timeout_ms must be positive (got %d)", c.Cache.CommandTimeoutMs)
	}
	if c.Cache.MaxRetriesPerCommand != nil && *c.Cache.MaxRetriesPerCommand < 0 {
		return fmt.Errorf("cache.max_retries_per_command must not be negative (got %d)", *c.Cache.MaxRetriesPerCommand)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	return nil
}

func lookupBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func lookupInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
