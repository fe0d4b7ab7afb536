// Package walker discovers candidate source files under an analysis root.
//
// Discovery applies three gates before extraction ever sees a file: the
// base-name exclusion vocabulary, the ignored-directory list, and a size
// ceiling. Matching is case-sensitive and applies to the whole base name,
// extension included, so "attest.py" is excluded by "test" while "Test.py"
// is not.
package walker

import (
	"os"
	"path/filepath"
	"strings"

	"repomind/internal/errors"
	"repomind/internal/logging"
	"repomind/internal/paths"
)

// Candidate is a source file that survived discovery filtering
type Candidate struct {
	// AbsPath is the absolute filesystem path
	AbsPath string
	// Rel is the canonical root-relative path with forward slashes
	Rel string
	// Depth is the number of directories between the root and the file
	Depth int
	Size  int64
}

// Stats counts what the walk saw and why files were set aside
type Stats struct {
	DirsVisited int
	FilesSeen   int
	Excluded    int
	Unsupported int
	Oversize    int
	Unreadable  int
}

// Options configures a walk
type Options struct {
	// Exclude is the base-name exclusion vocabulary
	Exclude []string
	// IgnoreDirs lists directory names never descended into
	IgnoreDirs []string
	// MaxFileSizeBytes caps candidate size; larger files are skipped
	MaxFileSizeBytes int64
	// Supported reports whether the extractor handles this path
	Supported func(path string) bool
	Logger    *logging.Logger
}

// Excluded reports whether a base name matches the exclusion vocabulary.
// Matching is a case-sensitive substring check against the full base name.
func Excluded(base string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if word == "" {
			continue
		}
		if strings.Contains(base, word) {
			return true
		}
	}
	return false
}

// Walk discovers candidate files under root in lexical order.
func Walk(root string, opts Options) ([]Candidate, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, Stats{}, errors.New(errors.RootUnreadable, "cannot stat analysis root", err).
			WithDetails(map[string]string{"root": root})
	}
	if !info.IsDir() {
		return nil, Stats{}, errors.New(errors.RootUnreadable, "analysis root is not a directory", nil).
			WithDetails(map[string]string{"root": root})
	}

	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignore[d] = true
	}

	var candidates []Candidate
	var stats Stats

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			stats.Unreadable++
			logger.Warn("skipping unreadable path", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := info.Name()

		if info.IsDir() {
			if path != root && (ignore[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			stats.DirsVisited++
			return nil
		}

		// Symlinks, devices, and other non-regular entries are never candidates.
		if !info.Mode().IsRegular() {
			return nil
		}
		stats.FilesSeen++

		if opts.Supported != nil && !opts.Supported(path) {
			stats.Unsupported++
			return nil
		}

		if Excluded(name, opts.Exclude) {
			stats.Excluded++
			logger.Debug("excluded by name", map[string]interface{}{"path": path})
			return nil
		}

		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			stats.Oversize++
			logger.Warn("skipping oversized file", map[string]interface{}{
				"path":  path,
				"bytes": info.Size(),
			})
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = paths.Normalize(rel)

		candidates = append(candidates, Candidate{
			AbsPath: path,
			Rel:     rel,
			Depth:   paths.Depth(rel),
			Size:    info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, stats, errors.New(errors.RootUnreadable, "walk failed", walkErr)
	}

	return candidates, stats, nil
}
