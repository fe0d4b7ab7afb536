package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"repomind/internal/config"
	"repomind/internal/logging"
)

// setupRun loads the configuration for root and builds the logger for one
// command invocation. A missing or broken config degrades to defaults with
// a warning, matching the per-file recoverable posture elsewhere.
func setupRun(root string) (*config.Config, *logging.Logger) {
	cfg, loadErr := config.LoadConfig(root)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}
	if valErr := cfg.Validate(); valErr != nil {
		cfg = config.DefaultConfig()
		if loadErr == nil {
			loadErr = valErr
		}
	}

	logger := newLogger(cfg)
	if loadErr != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": loadErr.Error(),
		})
	}
	return cfg, logger
}

// newLogger builds a logger from config plus the --log-level override.
// Logs go to stderr; stdout belongs to the artifacts.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
	})
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// resolveMemoryFile places a relative memory store path beside the digest
// artifact, so both land in the same directory by default.
func resolveMemoryFile(memFile, outPath string) string {
	if filepath.IsAbs(memFile) {
		return memFile
	}
	return filepath.Join(filepath.Dir(outPath), memFile)
}

// fatal prints an error to stderr and exits non-zero.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
