package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"pyth_index/internal/domain"
	"pyth_index/internal/layout"
)

// Default values for optional configuration fields.
const (
	DefaultAppName     = "pyth-index"
	DefaultAccountsDir = "accounts"
	DefaultDBPath      = "data/pyth_index.db"
	DefaultWindowLimit = layout.DefaultWindowLimit
	DefaultLogLevel    = "info"
	DefaultLogFile     = "logs/app.log"
)

// Config holds all application settings.
// After LoadConfig reads the file, environment variables override selected fields.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Accounts struct {
		Dir string `yaml:"dir"`
	} `yaml:"accounts"`

	Walker struct {
		WindowLimit int `yaml:"window_limit"`
	} `yaml:"walker"`

	Registry struct {
		UniqueNames bool `yaml:"unique_names"`
	} `yaml:"registry"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML, applies defaults and environment overrides, then validates.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := overrideWithEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = DefaultAppName
	}
	if c.Accounts.Dir == "" {
		c.Accounts.Dir = DefaultAccountsDir
	}
	if c.Walker.WindowLimit == 0 {
		c.Walker.WindowLimit = DefaultWindowLimit
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultDBPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.File == "" {
		c.Logging.File = DefaultLogFile
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Walker.WindowLimit < 1 || c.Walker.WindowLimit > layout.MapTableSize {
		return &domain.ConfigError{Field: "walker.window_limit", Err: fmt.Errorf("must be in [1, %d], got %d", layout.MapTableSize, c.Walker.WindowLimit)}
	}
	if c.Accounts.Dir == "" {
		return &domain.ConfigError{Field: "accounts.dir", Err: errors.New("is required")}
	}
	if c.Storage.Path == "" {
		return &domain.ConfigError{Field: "storage.path", Err: errors.New("is required")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ConfigError{Field: "logging.level", Err: fmt.Errorf("unknown level %q", c.Logging.Level)}
	}
	return nil
}

// overrideWithEnv replaces config values with environment variables when they are set.
func overrideWithEnv(cfg *Config) error {
	if dir := os.Getenv("PYTH_INDEX_ACCOUNTS_DIR"); dir != "" {
		cfg.Accounts.Dir = dir
	}
	if path := os.Getenv("PYTH_INDEX_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("PYTH_INDEX_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if window := os.Getenv("PYTH_INDEX_WINDOW_LIMIT"); window != "" {
		n, err := strconv.Atoi(window)
		if err != nil {
			return &domain.ConfigError{Field: "PYTH_INDEX_WINDOW_LIMIT", Err: err}
		}
		cfg.Walker.WindowLimit = n
	}
	return nil
}
