// Package critic cross-references every call observed during extraction
// against the definitions that survived pruning. A name that is called
// somewhere but defined nowhere in the retained set is flagged as possibly
// missing context.
//
// Findings are heuristic. The flagged name may live in an excluded file or
// be a language builtin; the report does not try to tell these apart.
package critic

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"repomind/internal/errors"
	"repomind/internal/extract"
)

// DefaultOutputFile is where the analyze command writes the report unless
// --critic-out overrides it
const DefaultOutputFile = "repomind_critic.json"

// Finding is one suspected-missing name with the files that call it.
type Finding struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// Report lists every called-but-undefined name for one run.
type Report struct {
	Root          string    `json:"root"`
	GeneratedAt   time.Time `json:"generated_at"`
	Findings      []Finding `json:"findings"`
	TotalFindings int       `json:"total_findings"`
}

// Review builds a report from the full pre-prune record set and the
// retained definition union. Pruned files still contribute their calls:
// pruning must not hide a missing-definition signal.
func Review(root string, all []*extract.FileRecord, defined map[string]bool) *Report {
	callers := make(map[string][]string)
	for _, rec := range all {
		for _, name := range rec.Called {
			if defined[name] {
				continue
			}
			callers[name] = append(callers[name], rec.Path)
		}
	}

	findings := make([]Finding, 0, len(callers))
	for name, files := range callers {
		sort.Strings(files)
		findings = append(findings, Finding{Name: name, Files: files})
	}
	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Name < findings[j].Name
	})

	return &Report{
		Root:          root,
		GeneratedAt:   time.Now().UTC(),
		Findings:      findings,
		TotalFindings: len(findings),
	}
}

// WriteFile writes the report as JSON, atomically.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal critic report", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.New(errors.OutputUnwritable, "failed to write critic report", err).
			WithDetails(map[string]string{"path": path})
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(errors.OutputUnwritable, "failed to rename critic report into place", err).
			WithDetails(map[string]string{"path": path})
	}

	return nil
}

// Load reads a previously written report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read critic report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse critic report: %w", err)
	}
	return &r, nil
}

// Human renders the report for the console.
func (r *Report) Human() string {
	var b strings.Builder

	if len(r.Findings) == 0 {
		b.WriteString("No missing definitions found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Possibly missing definitions (%d):\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "\n  %s\n", f.Name)
		fmt.Fprintf(&b, "    called from: %s\n", strings.Join(f.Files, ", "))
	}

	return b.String()
}
