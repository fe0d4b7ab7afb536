package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete repomind configuration (v1 schema)
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Walk    WalkConfig    `json:"walk" mapstructure:"walk"`
	Prune   PruneConfig   `json:"prune" mapstructure:"prune"`
	Memory  MemoryConfig  `json:"memory" mapstructure:"memory"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Workers int           `json:"workers" mapstructure:"workers"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// WalkConfig controls file discovery and filtering
type WalkConfig struct {
	// Exclude lists substrings that disqualify a file by base name
	Exclude []string `json:"exclude" mapstructure:"exclude"`
	// IgnoreDirs lists directory names that are never descended into
	IgnoreDirs       []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// PruneConfig controls retention scoring
type PruneConfig struct {
	Penalty   int `json:"penalty" mapstructure:"penalty"`
	Threshold int `json:"threshold" mapstructure:"threshold"`
}

// MemoryConfig controls the rolling memory store
type MemoryConfig struct {
	// Window is the number of raw entries kept before compression
	Window int    `json:"window" mapstructure:"window"`
	File   string `json:"file" mapstructure:"file"`
}

// CacheConfig controls the optional extraction cache
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Walk: WalkConfig{
			Exclude:          []string{"test", "__init__", "setup", "example"},
			IgnoreDirs:       []string{".git", ".hg", ".repomind", "node_modules", "vendor", "__pycache__"},
			MaxFileSizeBytes: 1000000,
		},
		Prune: PruneConfig{
			Penalty:   1,
			Threshold: 4,
		},
		Memory: MemoryConfig{
			Window: 5,
			File:   "repomind_memory.json",
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    filepath.Join(".repomind", "cache.db"),
		},
		Workers: 0, // 0 means one worker per CPU
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.repomind/config.json.
// Values can be overridden through REPOMIND_* environment variables.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("walk.exclude", defaults.Walk.Exclude)
	v.SetDefault("walk.ignoreDirs", defaults.Walk.IgnoreDirs)
	v.SetDefault("walk.maxFileSizeBytes", defaults.Walk.MaxFileSizeBytes)
	v.SetDefault("prune.penalty", defaults.Prune.Penalty)
	v.SetDefault("prune.threshold", defaults.Prune.Threshold)
	v.SetDefault("memory.window", defaults.Memory.Window)
	v.SetDefault("memory.file", defaults.Memory.File)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.path", defaults.Cache.Path)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".repomind"))

	v.SetEnvPrefix("REPOMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, defaults (plus env overrides) still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.repomind/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".repomind")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Walk.MaxFileSizeBytes <= 0 {
		return &ConfigError{Field: "walk.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.Prune.Penalty < 0 {
		return &ConfigError{Field: "prune.penalty", Message: "must not be negative"}
	}
	if c.Memory.Window < 1 {
		return &ConfigError{Field: "memory.window", Message: "must be at least 1"}
	}
	if c.Memory.File == "" {
		return &ConfigError{Field: "memory.file", Message: "must not be empty"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn, or error"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
