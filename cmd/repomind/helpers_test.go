package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"repomind/internal/digest"
	"repomind/internal/memory"
)

func TestResolveMemoryFile(t *testing.T) {
	tests := []struct {
		name    string
		memFile string
		outPath string
		want    string
	}{
		{
			name:    "relative beside default out",
			memFile: "repomind_memory.json",
			outPath: filepath.Join("/work", "repomind_summary.json"),
			want:    filepath.Join("/work", "repomind_memory.json"),
		},
		{
			name:    "relative beside custom out dir",
			memFile: "repomind_memory.json",
			outPath: filepath.Join("/tmp", "out", "digest.json"),
			want:    filepath.Join("/tmp", "out", "repomind_memory.json"),
		},
		{
			name:    "absolute path wins",
			memFile: filepath.Join("/var", "state", "mem.json"),
			outPath: filepath.Join("/work", "repomind_summary.json"),
			want:    filepath.Join("/var", "state", "mem.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveMemoryFile(tt.memFile, tt.outPath)
			if got != tt.want {
				t.Errorf("resolveMemoryFile(%q, %q) = %q, want %q",
					tt.memFile, tt.outPath, got, tt.want)
			}
		})
	}
}

func TestFormatEntryRaw(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := memory.Entry{
		Type:      memory.EntryRaw,
		Timestamp: ts,
		Digest: &digest.Digest{
			RunID:      "run-1234",
			TotalFiles: 3,
			TotalDefs:  7,
			TotalCalls: 12,
		},
	}

	line := formatEntry(e)
	for _, want := range []string{"2025-06-01T12:00:00Z", "files=3", "defs=7", "calls=12", "run-1234"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatEntry() = %q, missing %q", line, want)
		}
	}
}

func TestFormatEntryCompressed(t *testing.T) {
	e := memory.Entry{
		Type:           memory.EntryCompressed,
		FileCount:      10,
		TotalDefCount:  40,
		TotalCallCount: 90,
		Earliest:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Latest:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	line := formatEntry(e)
	for _, want := range []string{"compressed", "files=10", "defs=40", "calls=90", "2025-01-01", "2025-03-01"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatEntry() = %q, missing %q", line, want)
		}
	}
}
