// Package config provides configuration loading for catalogd.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Taxonomy TaxonomyConfig `koanf:"taxonomy"`
	Log      LogConfig      `koanf:"log"`
	Search   SearchConfig   `koanf:"search"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `koanf:"path"`
}

// TaxonomyConfig locates the taxonomy file. An empty path selects the
// built-in taxonomy.
type TaxonomyConfig struct {
	Path string `koanf:"path"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SearchConfig controls the query cache.
type SearchConfig struct {
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// Defaults
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultStoragePath = "catalog.db"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultCacheSize   = 1000
	DefaultCacheTTL    = 5 * time.Minute
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Search.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("search.cache_size cannot be negative, got %d", c.Search.CacheSize))
	}
	if c.Search.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("search.cache_ttl cannot be negative, got %s", c.Search.CacheTTL))
	}

	return errors.Join(errs...)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Search.CacheSize == 0 {
		cfg.Search.CacheSize = DefaultCacheSize
	}
	if cfg.Search.CacheTTL == 0 {
		cfg.Search.CacheTTL = DefaultCacheTTL
	}
}
