package doccheck

import (
	"context"
	"path/filepath"

	"repomind/internal/config"
	"repomind/internal/errors"
	"repomind/internal/extract"
	"repomind/internal/logging"
	"repomind/internal/manifest"
	"repomind/internal/walker"
)

// Warning is one recoverable per-file failure. Warnings are visible but
// never change the exit code.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Run walks root with the same discovery gates as analysis and checks
// every candidate for missing documentation. Per-file failures become
// warnings; only root-level failures return an error.
func Run(ctx context.Context, root string, cfg *config.Config, logger *logging.Logger) (*Report, []Warning, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, errors.New(errors.RootUnreadable, "cannot resolve analysis root", err)
	}

	if !IsAvailable() {
		return nil, nil, errors.New(errors.ExtractorUnavailable, "documentation check requires CGO (tree-sitter)", nil)
	}

	var warnings []Warning
	warn := func(path, message string) {
		warnings = append(warnings, Warning{Path: path, Message: message})
		logger.Warn(message, map[string]interface{}{"path": path})
	}

	man, err := manifest.Load(absRoot)
	if err != nil {
		warn(manifest.ManifestFile, "ignoring malformed manifest: "+err.Error())
		man = nil
	}

	exclude := append([]string(nil), cfg.Walk.Exclude...)
	ignoreDirs := append([]string(nil), cfg.Walk.IgnoreDirs...)
	if man != nil {
		exclude = append(exclude, man.Walk.ExtraExcludes...)
		ignoreDirs = append(ignoreDirs, man.Walk.IgnoreDirs...)
	}

	candidates, _, err := walker.Walk(absRoot, walker.Options{
		Exclude:          exclude,
		IgnoreDirs:       ignoreDirs,
		MaxFileSizeBytes: cfg.Walk.MaxFileSizeBytes,
		Supported:        extract.IsSupportedPath,
		Logger:           logger,
	})
	if err != nil {
		return nil, nil, err
	}

	checker := NewChecker()
	var files []*FileReport
	for _, cand := range candidates {
		fr, checkErr := checker.CheckFile(ctx, cand.AbsPath, cand.Rel)
		if checkErr != nil {
			warn(cand.Rel, checkErr.Error())
			continue
		}
		files = append(files, fr)
	}

	return Review(absRoot, files), warnings, nil
}
