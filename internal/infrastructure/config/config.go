package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// DefaultUploadLimit is the request body ceiling for uploads (50 GiB).
const DefaultUploadLimit int64 = 50 << 30

// Config holds all application configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              string        `envconfig:"PORT" default:"3030"`
	Host              string        `envconfig:"HOST" default:"127.0.0.1"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"2m"`
	Compression       bool          `envconfig:"COMPRESSION_ENABLED" default:"true"`
}

// StorageConfig holds the filesystem surface configuration.
type StorageConfig struct {
	BaseDir         string `envconfig:"STORAGE_BASE_DIR" default:"."`
	UploadLimit     int64  `envconfig:"STORAGE_UPLOAD_LIMIT" default:"53687091200"`
	MaxNameAttempts int    `envconfig:"STORAGE_MAX_NAME_ATTEMPTS" default:"10000"`
	ConfineSymlinks bool   `envconfig:"STORAGE_CONFINE_SYMLINKS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              "3030",
			Host:              "127.0.0.1",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
			Compression:       true,
		},
		Storage: StorageConfig{
			BaseDir:         ".",
			UploadLimit:     DefaultUploadLimit,
			MaxNameAttempts: 10000,
			ConfineSymlinks: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           false,
		},
	}
}

// fileConfig mirrors the on-disk config format. The two top-level keys are the
// historical ones; the tables are optional.
type fileConfig struct {
	ServePath   string `toml:"serve_path" yaml:"serve_path"`
	UploadLimit int64  `toml:"upload_limit" yaml:"upload_limit"`

	Server struct {
		Host string `toml:"host" yaml:"host"`
		Port string `toml:"port" yaml:"port"`
	} `toml:"server" yaml:"server"`

	Logging struct {
		Level       string `toml:"level" yaml:"level"`
		Development *bool  `toml:"development" yaml:"development"`
	} `toml:"logging" yaml:"logging"`

	RateLimit struct {
		RequestsPerSecond int   `toml:"rps" yaml:"rps"`
		Burst             int   `toml:"burst" yaml:"burst"`
		Enabled           *bool `toml:"enabled" yaml:"enabled"`
	} `toml:"rate_limit" yaml:"rate_limit"`
}

// LoadFile loads environment configuration and then applies the values set in
// the given file on top. Files ending in .yaml or .yml are parsed as YAML,
// everything else as TOML.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = toml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fc.applyTo(cfg)
	return cfg, nil
}

func (fc *fileConfig) applyTo(cfg *Config) {
	if fc.ServePath != "" {
		cfg.Storage.BaseDir = fc.ServePath
	}
	if fc.UploadLimit != 0 {
		cfg.Storage.UploadLimit = fc.UploadLimit
	}
	if fc.Server.Host != "" {
		cfg.Server.Host = fc.Server.Host
	}
	if fc.Server.Port != "" {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Development != nil {
		cfg.Logging.Development = *fc.Logging.Development
	}
	if fc.RateLimit.RequestsPerSecond != 0 {
		cfg.RateLimit.RequestsPerSecond = fc.RateLimit.RequestsPerSecond
	}
	if fc.RateLimit.Burst != 0 {
		cfg.RateLimit.Burst = fc.RateLimit.Burst
	}
	if fc.RateLimit.Enabled != nil {
		cfg.RateLimit.Enabled = *fc.RateLimit.Enabled
	}
}

// Validate normalizes the base directory to an absolute, cleaned path and checks
// that it is an existing directory and that the limits are usable.
func (c *Config) Validate() error {
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base directory is required")
	}
	abs, err := filepath.Abs(c.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("invalid storage base directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("storage base directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage base directory %s is not a directory", abs)
	}
	c.Storage.BaseDir = abs

	if c.Storage.UploadLimit <= 0 {
		return fmt.Errorf("upload limit must be positive, got %d", c.Storage.UploadLimit)
	}
	if c.Storage.MaxNameAttempts <= 0 {
		return fmt.Errorf("max name attempts must be positive, got %d", c.Storage.MaxNameAttempts)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive rps and burst")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
