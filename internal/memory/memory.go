// Package memory persists digest history across runs.
//
// The store is a JSON array ordered newest first. The most recent window
// of runs is kept raw (full digests); everything older is folded into a
// single trailing compressed entry that only carries aggregate counts and
// the timestamp span it covers. Folding runs on every save, so the file
// never grows without bound.
//
// The store assumes a single writer per invocation. Concurrent runs
// against the same file are unsupported and may race.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"repomind/internal/digest"
	"repomind/internal/errors"
)

// DefaultFile is the memory store's filename
const DefaultFile = "repomind_memory.json"

// DefaultWindow is the raw-retention window used when no configuration
// overrides it
const DefaultWindow = 5

// EntryType distinguishes raw from compressed entries
type EntryType string

const (
	EntryRaw        EntryType = "raw"
	EntryCompressed EntryType = "compressed"
)

// Entry is one element of the store. A raw entry wraps a full historical
// digest; a compressed entry is aggregate-only. Exactly one of the two
// field groups is populated, matching Type.
type Entry struct {
	Type EntryType

	// Raw fields
	Timestamp time.Time
	Digest    *digest.Digest

	// Compressed fields
	FileCount      int
	TotalDefCount  int
	TotalCallCount int
	Earliest       time.Time
	Latest         time.Time
}

type rawEntryJSON struct {
	Type      EntryType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Digest    *digest.Digest `json:"digest"`
}

type compressedEntryJSON struct {
	Type           EntryType `json:"type"`
	FileCount      int       `json:"file_count"`
	TotalDefCount  int       `json:"total_def_count"`
	TotalCallCount int       `json:"total_call_count"`
	Earliest       time.Time `json:"earliest"`
	Latest         time.Time `json:"latest"`
}

// MarshalJSON serializes the entry in its type-specific flat shape.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EntryRaw:
		return json.Marshal(rawEntryJSON{
			Type:      EntryRaw,
			Timestamp: e.Timestamp,
			Digest:    e.Digest,
		})
	case EntryCompressed:
		return json.Marshal(compressedEntryJSON{
			Type:           EntryCompressed,
			FileCount:      e.FileCount,
			TotalDefCount:  e.TotalDefCount,
			TotalCallCount: e.TotalCallCount,
			Earliest:       e.Earliest,
			Latest:         e.Latest,
		})
	default:
		return nil, fmt.Errorf("unknown entry type %q", e.Type)
	}
}

// UnmarshalJSON dispatches on the type discriminator.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type EntryType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case EntryRaw:
		var raw rawEntryJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*e = Entry{Type: EntryRaw, Timestamp: raw.Timestamp, Digest: raw.Digest}
		return nil
	case EntryCompressed:
		var comp compressedEntryJSON
		if err := json.Unmarshal(data, &comp); err != nil {
			return err
		}
		*e = Entry{
			Type:           EntryCompressed,
			FileCount:      comp.FileCount,
			TotalDefCount:  comp.TotalDefCount,
			TotalCallCount: comp.TotalCallCount,
			Earliest:       comp.Earliest,
			Latest:         comp.Latest,
		}
		return nil
	default:
		return fmt.Errorf("unknown entry type %q", probe.Type)
	}
}

// Store is the ordered history of digests, newest first.
type Store struct {
	Path    string
	Entries []Entry
}

// Open loads the store at path, starting empty if the file is absent.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{Path: path}, nil
	}
	if err != nil {
		return nil, errors.New(errors.MemoryCorrupt, "failed to read memory store", err).
			WithDetails(map[string]string{"path": path})
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.New(errors.MemoryCorrupt, "memory store is not valid JSON", err).
			WithDetails(map[string]string{"path": path})
	}

	for i, e := range entries {
		if e.Type == EntryRaw && e.Digest == nil {
			return nil, errors.New(errors.MemoryCorrupt, "raw entry has no digest", nil).
				WithDetails(map[string]interface{}{"path": path, "index": i})
		}
	}

	return &Store{Path: path, Entries: entries}, nil
}

// Record prepends the digest as the newest raw entry.
func (s *Store) Record(d *digest.Digest) {
	entry := Entry{
		Type:      EntryRaw,
		Timestamp: d.GeneratedAt,
		Digest:    d,
	}
	s.Entries = append([]Entry{entry}, s.Entries...)
}

// Compress folds raw entries beyond the window into the trailing
// compressed entry. Counts sum; the timestamp span widens to cover every
// folded entry. Folding is irreversible.
func (s *Store) Compress(window int) {
	var raws []Entry
	var comp *Entry

	for _, e := range s.Entries {
		switch e.Type {
		case EntryRaw:
			raws = append(raws, e)
		case EntryCompressed:
			if comp == nil {
				c := e
				comp = &c
			} else {
				// The invariant is at most one compressed entry; if an
				// older writer left two, merge them rather than drop one.
				comp.FileCount += e.FileCount
				comp.TotalDefCount += e.TotalDefCount
				comp.TotalCallCount += e.TotalCallCount
				comp.widen(e.Earliest)
				comp.widen(e.Latest)
			}
		}
	}

	keep := raws
	if len(raws) > window {
		keep = raws[:window]
		for _, e := range raws[window:] {
			if comp == nil {
				comp = &Entry{Type: EntryCompressed}
			}
			comp.FileCount += e.Digest.TotalFiles
			comp.TotalDefCount += e.Digest.TotalDefs
			comp.TotalCallCount += e.Digest.TotalCalls
			comp.widen(e.Timestamp)
		}
	}

	s.Entries = keep
	if comp != nil {
		s.Entries = append(s.Entries, *comp)
	}
}

func (e *Entry) widen(ts time.Time) {
	if ts.IsZero() {
		return
	}
	if e.Earliest.IsZero() || ts.Before(e.Earliest) {
		e.Earliest = ts
	}
	if e.Latest.IsZero() || ts.After(e.Latest) {
		e.Latest = ts
	}
}

// Save writes the store atomically via a temporary file and rename.
func (s *Store) Save() error {
	entries := s.Entries
	if entries == nil {
		// An empty store is still a JSON array.
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal memory store", err)
	}

	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.New(errors.MemoryUnwritable, "failed to write memory store", err).
			WithDetails(map[string]string{"path": s.Path})
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.New(errors.MemoryUnwritable, "failed to rename memory store into place", err).
			WithDetails(map[string]string{"path": s.Path})
	}

	return nil
}

// RawCount returns the number of raw entries.
func (s *Store) RawCount() int {
	n := 0
	for _, e := range s.Entries {
		if e.Type == EntryRaw {
			n++
		}
	}
	return n
}

// Compressed returns the trailing compressed entry, or nil.
func (s *Store) Compressed() *Entry {
	for i := range s.Entries {
		if s.Entries[i].Type == EntryCompressed {
			return &s.Entries[i]
		}
	}
	return nil
}
