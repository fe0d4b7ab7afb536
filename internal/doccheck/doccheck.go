// Package doccheck reports functions and classes that lack documentation.
// Python definitions are checked for a docstring; every other language is
// checked for a comment directly above the definition. The report is
// advisory, nothing is rewritten.
package doccheck

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"repomind/internal/errors"
)

// DefaultOutputFile is where the report lands when --out asks for a file.
const DefaultOutputFile = "repomind_doccheck.json"

// FileReport is the check result for one source file. Missing holds the
// undocumented definition names in source order.
type FileReport struct {
	Path    string   `json:"path"`
	Missing []string `json:"missing,omitempty"`
	Checked int      `json:"checked"`
}

// Documented reports whether every definition in the file carries docs.
func (fr *FileReport) Documented() bool {
	return len(fr.Missing) == 0
}

// Report aggregates file results for one run. Only files with missing
// documentation are listed; the totals cover everything checked.
type Report struct {
	Root         string       `json:"root"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Files        []FileReport `json:"files"`
	TotalChecked int          `json:"total_checked"`
	TotalMissing int          `json:"total_missing"`
}

// Review builds a report from per-file results, sorted by path.
func Review(root string, files []*FileReport) *Report {
	r := &Report{
		Root:        root,
		GeneratedAt: time.Now().UTC(),
	}
	for _, fr := range files {
		if fr == nil {
			continue
		}
		r.TotalChecked += fr.Checked
		if len(fr.Missing) > 0 {
			r.Files = append(r.Files, *fr)
			r.TotalMissing += len(fr.Missing)
		}
	}
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})
	return r
}

// WriteFile writes the report as JSON, atomically via tmp+rename.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal doccheck report", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.New(errors.OutputUnwritable, "failed to write doccheck report", err).
			WithDetails(map[string]string{"path": path})
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(errors.OutputUnwritable, "failed to rename doccheck report into place", err).
			WithDetails(map[string]string{"path": path})
	}

	return nil
}

// Human renders the report for terminal output.
func (r *Report) Human() string {
	if len(r.Files) == 0 {
		return fmt.Sprintf("All %d definitions are documented.\n", r.TotalChecked)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Missing documentation (%d of %d definitions):\n", r.TotalMissing, r.TotalChecked))
	for _, fr := range r.Files {
		sb.WriteString(fmt.Sprintf("  %s:\n", fr.Path))
		for _, name := range fr.Missing {
			sb.WriteString(fmt.Sprintf("    - %s\n", name))
		}
	}
	return sb.String()
}
