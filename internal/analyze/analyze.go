// Package analyze wires the digest pipeline for one repository root:
// discovery, extraction, pruning, digest assembly, memory update, critic.
//
// Collect computes everything without touching disk beyond reads; Run adds
// the persistent side effects (digest artifact, memory store, optional
// critic report). The critic subcommand reuses Collect so it can rebuild
// the pre-prune call union without disturbing any artifact.
package analyze

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"repomind/internal/cache"
	"repomind/internal/config"
	"repomind/internal/critic"
	"repomind/internal/digest"
	"repomind/internal/errors"
	"repomind/internal/extract"
	"repomind/internal/logging"
	"repomind/internal/manifest"
	"repomind/internal/memory"
	"repomind/internal/prune"
	"repomind/internal/walker"
)

// Options are the effective settings for one run. The caller folds flag
// overrides into Config before handing it over.
type Options struct {
	// Root is the repository root to analyze.
	Root string

	// OutputPath receives the digest. Empty means digest.DefaultOutputFile
	// in the working directory, matching the CLI default.
	OutputPath string

	// CriticPath, when set, receives the critic report as JSON.
	CriticPath string

	Format digest.Format

	Config *config.Config

	Logger *logging.Logger
}

// Warning is one recoverable failure attached to the run result. Warnings
// are visible but never change the exit code.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Stats aggregates counters for one run.
type Stats struct {
	walker.Stats
	Extracted   int
	Failed      int
	Retained    int
	Dropped     int
	CacheHits   int
	CacheMisses int
	Duration    time.Duration
}

// Result carries everything a run produced. Memory is populated by Run
// only; Collect leaves it nil.
type Result struct {
	Digest   *digest.Digest
	Critic   *critic.Report
	Memory   *memory.Store
	Warnings []Warning
	Stats    Stats
}

// Runner executes the pipeline with fixed options.
type Runner struct {
	opts   Options
	logger *logging.Logger
}

// NewRunner creates a runner. Missing options fall back to defaults.
func NewRunner(opts Options) *Runner {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.OutputPath == "" {
		opts.OutputPath = digest.DefaultOutputFile
	}
	if opts.Format == "" {
		opts.Format = digest.FormatJSON
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{opts: opts, logger: logger}
}

// Collect walks the root, extracts every candidate, prunes, and builds the
// digest and critic report. Nothing is persisted. Fatal failures return an
// error; per-file failures become warnings on the result.
func (r *Runner) Collect(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := r.opts.Config

	root, err := filepath.Abs(r.opts.Root)
	if err != nil {
		return nil, errors.New(errors.RootUnreadable, "cannot resolve analysis root", err)
	}

	if !extract.IsAvailable() {
		return nil, errors.New(errors.ExtractorUnavailable, "extraction requires CGO (tree-sitter)", nil)
	}

	result := &Result{}

	// Project manifest: absence is fine, a broken one is only a warning.
	man, err := manifest.Load(root)
	if err != nil {
		r.warn(result, manifest.ManifestFile, "ignoring malformed manifest: "+err.Error())
		man = nil
	}

	exclude := append([]string(nil), cfg.Walk.Exclude...)
	ignoreDirs := append([]string(nil), cfg.Walk.IgnoreDirs...)
	if man != nil {
		exclude = append(exclude, man.Walk.ExtraExcludes...)
		ignoreDirs = append(ignoreDirs, man.Walk.IgnoreDirs...)
	}

	candidates, wstats, err := walker.Walk(root, walker.Options{
		Exclude:          exclude,
		IgnoreDirs:       ignoreDirs,
		MaxFileSizeBytes: cfg.Walk.MaxFileSizeBytes,
		Supported:        extract.IsSupportedPath,
		Logger:           r.logger,
	})
	if err != nil {
		return nil, err
	}
	result.Stats.Stats = wstats

	var fileCache *cache.Cache
	if cfg.Cache.Enabled {
		cachePath := cfg.Cache.Path
		if !filepath.IsAbs(cachePath) {
			cachePath = filepath.Join(root, cachePath)
		}
		fileCache, err = cache.Open(cachePath, r.logger)
		if err != nil {
			// A broken cache degrades to a cold run, never a failed one.
			r.warn(result, cfg.Cache.Path, "extraction cache unavailable: "+err.Error())
			fileCache = nil
		} else {
			defer fileCache.Close()
		}
	}

	outcomes := r.extractAll(ctx, candidates, fileCache)

	var records []*extract.FileRecord
	for _, out := range outcomes {
		switch {
		case out.warning != nil:
			result.Stats.Failed++
			r.warn(result, out.warning.Path, out.warning.Message)
		case out.record != nil:
			result.Stats.Extracted++
			if fileCache != nil {
				if out.cacheHit {
					result.Stats.CacheHits++
				} else {
					result.Stats.CacheMisses++
				}
			}
			records = append(records, out.record)
		}
	}

	policy := prune.Policy{
		Penalty:   cfg.Prune.Penalty,
		Threshold: cfg.Prune.Threshold,
		Keep:      man.KeepSet(),
	}
	retained, dropped := prune.Apply(records, policy)
	result.Stats.Retained = len(retained)
	result.Stats.Dropped = len(dropped)

	promptContext, err := digest.LoadPromptContext(root)
	if err != nil {
		r.warn(result, digest.PromptContextFile, err.Error())
	}

	d := digest.New(root, retained, promptContext)
	result.Digest = d

	// Dropped files still contribute their calls to the critic: pruning
	// must not hide a missing-definition signal.
	result.Critic = critic.Review(root, records, d.DefinedNames())

	result.Stats.Duration = time.Since(start)
	return result, nil
}

// Run executes Collect and persists the artifacts: the digest, the updated
// memory store, and the critic report when a path was given.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result, err := r.Collect(ctx)
	if err != nil {
		return nil, err
	}
	cfg := r.opts.Config

	if err := result.Digest.WriteFile(r.opts.OutputPath, r.opts.Format); err != nil {
		return nil, err
	}

	store, err := memory.Open(cfg.Memory.File)
	if err != nil {
		return nil, err
	}
	store.Record(result.Digest)
	store.Compress(cfg.Memory.Window)
	if err := store.Save(); err != nil {
		return nil, err
	}
	result.Memory = store

	if r.opts.CriticPath != "" {
		if err := result.Critic.WriteFile(r.opts.CriticPath); err != nil {
			return nil, err
		}
	}

	result.Stats.Duration = time.Since(start)
	r.logger.Info("analysis complete", map[string]interface{}{
		"root":        result.Digest.Root,
		"retained":    result.Stats.Retained,
		"dropped":     result.Stats.Dropped,
		"warnings":    len(result.Warnings),
		"findings":    result.Critic.TotalFindings,
		"duration_ms": result.Stats.Duration.Milliseconds(),
	})

	return result, nil
}

// outcome is one candidate's extraction result, exactly one field set.
type outcome struct {
	record   *extract.FileRecord
	warning  *Warning
	cacheHit bool
}

// extractAll runs extraction across candidates with bounded concurrency.
// Results are slotted by candidate index, so the merge is deterministic
// regardless of completion order.
func (r *Runner) extractAll(ctx context.Context, candidates []walker.Candidate, fileCache *cache.Cache) []outcome {
	workers := r.opts.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]outcome, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := range candidates {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Parsers are not safe to share across goroutines.
			outcomes[idx] = r.extractOne(ctx, extract.NewExtractor(), candidates[idx], fileCache)
		}(i)
	}

	wg.Wait()
	return outcomes
}

// extractOne extracts a single candidate, consulting the cache when one is
// open. Cache entries are keyed by content hash, so a stale path never
// serves stale records.
func (r *Runner) extractOne(ctx context.Context, ex *extract.Extractor, cand walker.Candidate, fileCache *cache.Cache) outcome {
	source, err := os.ReadFile(cand.AbsPath)
	if err != nil {
		return outcome{warning: &Warning{Path: cand.Rel, Message: "unreadable: " + err.Error()}}
	}

	var hash string
	if fileCache != nil {
		hash = cache.HashSource(source)
		if rec, ok, getErr := fileCache.Get(hash); getErr == nil && ok {
			rec.Path = cand.Rel
			return outcome{record: rec, cacheHit: true}
		}
	}

	lang, ok := extract.LanguageForPath(cand.AbsPath)
	if !ok {
		return outcome{warning: &Warning{Path: cand.Rel, Message: "unsupported file extension"}}
	}

	rec, err := ex.ExtractSource(ctx, cand.Rel, source, lang)
	if err != nil {
		return outcome{warning: &Warning{Path: cand.Rel, Message: err.Error()}}
	}

	if fileCache != nil {
		if putErr := fileCache.Put(hash, cand.Rel, rec); putErr != nil {
			r.logger.Debug("cache write failed", map[string]interface{}{
				"path":  cand.Rel,
				"error": putErr.Error(),
			})
		}
	}

	return outcome{record: rec}
}

func (r *Runner) warn(result *Result, path, message string) {
	result.Warnings = append(result.Warnings, Warning{Path: path, Message: message})
	r.logger.Warn(message, map[string]interface{}{"path": path})
}
