//go:build !cgo

package extract

import (
	"context"

	"repomind/internal/errors"
)

// Extractor produces per-file extraction records.
// This is a stub implementation for non-CGO builds.
type Extractor struct{}

// NewExtractor creates a new extractor.
// Returns nil when CGO is disabled.
func NewExtractor() *Extractor {
	return nil
}

// ExtractFile reads and extracts one source file.
// Stub implementation returns an error.
func (e *Extractor) ExtractFile(ctx context.Context, absPath string, relPath string) (*FileRecord, error) {
	return nil, errors.New(errors.ExtractorUnavailable, "extraction requires CGO (tree-sitter)", nil)
}

// ExtractSource extracts defined and called names from source code.
// Stub implementation returns an error.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) (*FileRecord, error) {
	return nil, errors.New(errors.ExtractorUnavailable, "extraction requires CGO (tree-sitter)", nil)
}

// IsAvailable returns whether extraction is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
