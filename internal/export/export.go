// Package export assembles self-contained hand-off bundles for downstream
// LLM tooling. A bundle packs the digest, the critic report, and the memory
// history into one document, optionally gzip-compressed.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"repomind/internal/critic"
	"repomind/internal/digest"
	"repomind/internal/errors"
	"repomind/internal/logging"
	"repomind/internal/memory"
	"repomind/internal/version"
)

// DefaultOutputFile is where the bundle lands unless --out overrides it.
const DefaultOutputFile = "repomind_export.json"

// Bundle is a single document carrying everything a downstream consumer
// needs about one analyzed repository.
type Bundle struct {
	Metadata BundleMetadata `json:"metadata"`
	Digest   *digest.Digest `json:"digest"`
	Critic   *critic.Report `json:"critic,omitempty"`
	Memory   []memory.Entry `json:"memory,omitempty"`
}

// BundleMetadata describes the bundle itself.
type BundleMetadata struct {
	Repo      string `json:"repo"`
	Generated string `json:"generated"` // ISO 8601 timestamp
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	RunID     string `json:"runId,omitempty"`
	FileCount int    `json:"fileCount"`
	DefCount  int    `json:"defCount"`
	CallCount int    `json:"callCount"`
}

// Options configures what goes into a bundle.
type Options struct {
	IncludeCritic bool // attach the critic report
	IncludeMemory bool // attach the memory history
	Compress      bool // gzip the written artifact
}

// Exporter builds and writes bundles.
type Exporter struct {
	root   string
	logger *logging.Logger
}

// NewExporter creates an exporter for the given repository root.
func NewExporter(root string, logger *logging.Logger) *Exporter {
	return &Exporter{root: root, logger: logger}
}

// Build assembles a bundle from the run artifacts. The critic report and
// memory history are attached only when the options ask for them and the
// artifact exists.
func (e *Exporter) Build(d *digest.Digest, report *critic.Report, store *memory.Store, opts Options) *Bundle {
	b := &Bundle{
		Metadata: BundleMetadata{
			Repo:      filepath.Base(e.root),
			Generated: time.Now().UTC().Format(time.RFC3339),
			Tool:      "repomind",
			Version:   version.Version,
		},
		Digest: d,
	}
	if d != nil {
		b.Metadata.RunID = d.RunID
		b.Metadata.FileCount = d.TotalFiles
		b.Metadata.DefCount = d.TotalDefs
		b.Metadata.CallCount = d.TotalCalls
	}
	if opts.IncludeCritic && report != nil {
		b.Critic = report
	}
	if opts.IncludeMemory && store != nil {
		b.Memory = store.Entries
	}

	e.logger.Debug("Bundle assembled", map[string]interface{}{
		"repo":    b.Metadata.Repo,
		"files":   b.Metadata.FileCount,
		"critic":  b.Critic != nil,
		"history": len(b.Memory),
	})

	return b
}

// Write serializes the bundle and moves it into place atomically. With
// compression enabled the artifact is gzip-encoded; Read recognizes the
// encoding from the stream itself, not the file name.
func (e *Exporter) Write(b *Bundle, path string, compress bool) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal bundle", err)
	}

	if compress {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(data); err != nil {
			return errors.New(errors.ExportFailed, "failed to compress bundle", err)
		}
		if err := gz.Close(); err != nil {
			return errors.New(errors.ExportFailed, "failed to finalize compressed bundle", err)
		}
		data = buf.Bytes()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.New(errors.ExportFailed, "failed to write bundle", err).
			WithDetails(map[string]string{"path": path})
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(errors.ExportFailed, "failed to rename bundle into place", err).
			WithDetails(map[string]string{"path": path})
	}

	return nil
}

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// Read loads a bundle written by Write, transparently decompressing
// gzip-encoded artifacts.
func Read(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed bundle: %w", err)
		}
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress bundle: %w", err)
		}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &b, nil
}

// FormatText renders the bundle as compact text for direct LLM consumption.
func (e *Exporter) FormatText(b *Bundle) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Repository: %s\n", b.Metadata.Repo))
	sb.WriteString(fmt.Sprintf("# Generated: %s\n", b.Metadata.Generated))
	sb.WriteString(fmt.Sprintf("# Files: %d | Definitions: %d | Calls: %d\n\n",
		b.Metadata.FileCount, b.Metadata.DefCount, b.Metadata.CallCount))

	if b.Digest != nil {
		paths := make([]string, 0, len(b.Digest.Files))
		for p := range b.Digest.Files {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			rec := b.Digest.Files[p]
			sb.WriteString(fmt.Sprintf("  ! %s\n", p))
			for _, name := range rec.Defined {
				sb.WriteString(fmt.Sprintf("      # %s()\n", name))
			}
		}
		sb.WriteString("\n")
	}

	if b.Critic != nil && b.Critic.TotalFindings > 0 {
		sb.WriteString(fmt.Sprintf("## Possibly missing definitions (%d)\n", b.Critic.TotalFindings))
		for _, f := range b.Critic.Findings {
			sb.WriteString(fmt.Sprintf("  ? %s  (called from: %s)\n", f.Name, strings.Join(f.Files, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(b.Memory) > 0 {
		sb.WriteString(fmt.Sprintf("## History (%d entries, newest first)\n", len(b.Memory)))
		for _, entry := range b.Memory {
			sb.WriteString("  " + describeEntry(entry) + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n")
	sb.WriteString("Legend:\n")
	sb.WriteString("  !  = file\n")
	sb.WriteString("  #  = function definition\n")
	if b.Critic != nil {
		sb.WriteString("  ?  = called but never defined\n")
	}

	return sb.String()
}

// describeEntry renders one memory entry as a single line.
func describeEntry(entry memory.Entry) string {
	if entry.Type == memory.EntryCompressed {
		return fmt.Sprintf("compressed  files=%d defs=%d calls=%d  span %s .. %s",
			entry.FileCount, entry.TotalDefCount, entry.TotalCallCount,
			entry.Earliest.Format(time.RFC3339), entry.Latest.Format(time.RFC3339))
	}
	if entry.Digest == nil {
		return "raw"
	}
	return fmt.Sprintf("raw         %s  files=%d defs=%d calls=%d",
		entry.Timestamp.Format(time.RFC3339),
		entry.Digest.TotalFiles, entry.Digest.TotalDefs, entry.Digest.TotalCalls)
}
