//go:build !cgo

package doccheck

import (
	"context"

	"repomind/internal/errors"
	"repomind/internal/extract"
)

// Checker inspects source files for undocumented definitions.
// This is a stub implementation for non-CGO builds.
type Checker struct{}

// NewChecker creates a new checker.
// Returns nil when CGO is disabled.
func NewChecker() *Checker {
	return nil
}

// CheckFile reads and checks one source file.
// Stub implementation returns an error.
func (c *Checker) CheckFile(ctx context.Context, absPath string, relPath string) (*FileReport, error) {
	return nil, errors.New(errors.ExtractorUnavailable, "documentation check requires CGO (tree-sitter)", nil)
}

// CheckSource checks source code for undocumented definitions.
// Stub implementation returns an error.
func (c *Checker) CheckSource(ctx context.Context, path string, source []byte, lang extract.Language) (*FileReport, error) {
	return nil, errors.New(errors.ExtractorUnavailable, "documentation check requires CGO (tree-sitter)", nil)
}

// IsAvailable returns whether the doc check is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
