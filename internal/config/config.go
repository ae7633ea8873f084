// Package config loads the gateway configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shellgate/shellgate/pkg/connectivity"
	"github.com/shellgate/shellgate/pkg/preload"
)

// Default values for configuration fields.
const (
	DefaultListenAddr      = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultLogLevel = "info"
)

// Config is the root configuration structure for the gateway.
type Config struct {
	// Server contains the HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Origin identifies the upstream application server.
	Origin OriginConfig `yaml:"origin"`

	// Shell controls navigation matching and document resolution.
	Shell ShellConfig `yaml:"shell"`

	// Redis configures the precache backend.
	Redis RedisConfig `yaml:"redis"`

	// Connectivity configures the online/offline assessment.
	Connectivity ConnectivityConfig `yaml:"connectivity"`

	// Preload configures speculative shell fetches.
	Preload PreloadConfig `yaml:"preload"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddr is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddr string `yaml:"listen_addr"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// OriginConfig identifies the upstream application server.
type OriginConfig struct {
	// URL is the base URL of the origin (e.g., "http://app:3000").
	URL string `yaml:"url"`
}

// ShellConfig controls navigation matching and document resolution.
type ShellConfig struct {
	// CanonicalHost is the production host whose navigations are handled.
	CanonicalHost string `yaml:"canonical_host"`

	// LocalDevHosts are additional hosts treated as the application during
	// development. Defaults to localhost, 127.0.0.1 and ::1 when empty.
	LocalDevHosts []string `yaml:"local_dev_hosts"`

	// DocumentURL is the absolute URL of the shell document at the origin.
	DocumentURL string `yaml:"document_url"`

	// OfflineFallbackPath is an optional path to an HTML file served when
	// the origin is unreachable and no cached copy exists.
	OfflineFallbackPath string `yaml:"offline_fallback_path"`
}

// RedisConfig configures the precache backend.
type RedisConfig struct {
	// Addr is the Redis server address.
	// Default: "localhost:6379"
	Addr string `yaml:"addr"`

	// Password is the Redis password (empty for no auth).
	Password string `yaml:"password"`

	// DB is the Redis database number.
	// Default: 0
	DB int `yaml:"db"`
}

// ConnectivityConfig configures the online/offline assessment.
type ConnectivityConfig struct {
	// FailureThreshold is the number of consecutive upstream failures
	// before the gateway assesses itself offline.
	// Default: 3
	FailureThreshold int `yaml:"failure_threshold"`
}

// PreloadConfig configures speculative shell fetches.
type PreloadConfig struct {
	// MaxConcurrent bounds in-flight speculative fetches.
	// Default: 8
	MaxConcurrent int `yaml:"max_concurrent"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	// Default: "info"
	Level string `yaml:"level"`

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool `yaml:"pretty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero-valued fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Connectivity.FailureThreshold == 0 {
		cfg.Connectivity.FailureThreshold = connectivity.DefaultFailureThreshold
	}
	if cfg.Preload.MaxConcurrent == 0 {
		cfg.Preload.MaxConcurrent = preload.DefaultConfig().MaxConcurrent
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// Validate checks the configuration for errors.
func Validate(cfg *Config) error {
	if cfg.Origin.URL == "" {
		return fmt.Errorf("origin.url is required")
	}
	if u, err := url.Parse(cfg.Origin.URL); err != nil || !u.IsAbs() {
		return fmt.Errorf("origin.url must be an absolute URL, got %q", cfg.Origin.URL)
	}
	if cfg.Shell.DocumentURL == "" {
		return fmt.Errorf("shell.document_url is required")
	}
	if u, err := url.Parse(cfg.Shell.DocumentURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("shell.document_url must be an absolute URL, got %q", cfg.Shell.DocumentURL)
	}
	if cfg.Connectivity.FailureThreshold < 0 {
		return fmt.Errorf("connectivity.failure_threshold must not be negative")
	}
	if cfg.Preload.MaxConcurrent < 0 {
		return fmt.Errorf("preload.max_concurrent must not be negative")
	}
	return nil
}

// Load reads a YAML configuration file, applies defaults and environment
// variable overrides, and validates the result. Environment variables use
// the SHELLGATE_SECTION_FIELD convention (e.g., SHELLGATE_SERVER_LISTEN_ADDR)
// and take precedence over the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies SHELLGATE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SHELLGATE_SERVER_LISTEN_ADDR"); val != "" {
		cfg.Server.ListenAddr = val
	}
	if val := os.Getenv("SHELLGATE_ORIGIN_URL"); val != "" {
		cfg.Origin.URL = val
	}
	if val := os.Getenv("SHELLGATE_SHELL_CANONICAL_HOST"); val != "" {
		cfg.Shell.CanonicalHost = val
	}
	if val := os.Getenv("SHELLGATE_SHELL_DOCUMENT_URL"); val != "" {
		cfg.Shell.DocumentURL = val
	}
	if val := os.Getenv("SHELLGATE_SHELL_OFFLINE_FALLBACK_PATH"); val != "" {
		cfg.Shell.OfflineFallbackPath = val
	}
	if val := os.Getenv("SHELLGATE_REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
	}
	if val := os.Getenv("SHELLGATE_REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("SHELLGATE_REDIS_DB"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = n
		}
	}
	if val := os.Getenv("SHELLGATE_CONNECTIVITY_FAILURE_THRESHOLD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Connectivity.FailureThreshold = n
		}
	}
	if val := os.Getenv("SHELLGATE_PRELOAD_MAX_CONCURRENT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Preload.MaxConcurrent = n
		}
	}
	if val := os.Getenv("SHELLGATE_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("SHELLGATE_LOG_PRETTY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Log.Pretty = b
		}
	}
}
