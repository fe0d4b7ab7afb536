// Package digest assembles and serializes the per-run summary artifact.
package digest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"repomind/internal/errors"
	"repomind/internal/extract"
)

// DefaultOutputFile is where the digest lands unless --out overrides it
const DefaultOutputFile = "repomind_summary.json"

// PromptContextFile is the auxiliary text blob picked up from the root
const PromptContextFile = "prompt_context.txt"

// Format selects the serialization of a digest artifact
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected json or yaml)", s)
	}
}

// Digest is the retained-file summary for one run.
type Digest struct {
	Root        string    `json:"root" yaml:"root"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	RunID       string    `json:"run_id" yaml:"run_id"`

	// Files maps canonical root-relative paths to their records.
	Files map[string]*extract.FileRecord `json:"files" yaml:"files"`

	// PromptContext is the verbatim content of prompt_context.txt,
	// omitted when the file is absent.
	PromptContext string `json:"prompt_context,omitempty" yaml:"prompt_context,omitempty"`

	TotalFiles int `json:"total_files" yaml:"total_files"`
	TotalDefs  int `json:"total_defs" yaml:"total_defs"`
	TotalCalls int `json:"total_calls" yaml:"total_calls"`
}

// New builds a digest from retained records.
func New(root string, records []*extract.FileRecord, promptContext string) *Digest {
	d := &Digest{
		Root:          root,
		GeneratedAt:   time.Now().UTC(),
		RunID:         uuid.NewString(),
		Files:         make(map[string]*extract.FileRecord, len(records)),
		PromptContext: promptContext,
	}
	for _, rec := range records {
		d.Files[rec.Path] = rec
		d.TotalDefs += rec.DefCount
		d.TotalCalls += rec.CallCount
	}
	d.TotalFiles = len(d.Files)
	return d
}

// DefinedNames returns the union of all defined names in the digest.
func (d *Digest) DefinedNames() map[string]bool {
	names := make(map[string]bool)
	for _, rec := range d.Files {
		for _, n := range rec.Defined {
			names[n] = true
		}
	}
	return names
}

// Encode serializes the digest in the requested format.
func (d *Digest) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	default:
		return json.MarshalIndent(d, "", "  ")
	}
}

// WriteFile writes the digest atomically: the bytes land in a temporary
// file that is renamed over the destination, so an interrupted run never
// leaves a half-written artifact.
func (d *Digest) WriteFile(path string, format Format) error {
	data, err := d.Encode(format)
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal digest", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.New(errors.OutputUnwritable, "failed to write digest", err).
			WithDetails(map[string]string{"path": path})
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(errors.OutputUnwritable, "failed to rename digest into place", err).
			WithDetails(map[string]string{"path": path})
	}

	return nil
}

// Load reads a previously written JSON digest.
func Load(path string) (*Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}

	var d Digest
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse digest: %w", err)
	}
	return &d, nil
}

// LoadPromptContext reads prompt_context.txt from the root verbatim.
// Absence is not an error and yields the empty string.
func LoadPromptContext(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, PromptContextFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", PromptContextFile, err)
	}
	return string(data), nil
}
