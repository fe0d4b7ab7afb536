// Package prune decides which extracted records survive into the digest.
//
// The retention score is call_count - depth*penalty: a file that is called
// a lot earns its place even when it sits deep in the tree, while a deep
// file nobody calls drops out. Files that define anything are always kept,
// as are files pinned by the project manifest.
package prune

import (
	"repomind/internal/extract"
	"repomind/internal/paths"
)

// Policy holds the retention parameters for one run
type Policy struct {
	// Penalty is subtracted from the score once per directory level
	Penalty int
	// Threshold is the minimum score for retention; a score equal to the
	// threshold is retained
	Threshold int
	// Keep pins root-relative paths that are retained unconditionally
	Keep map[string]bool
}

// Score computes the depth-penalized retention score.
func (p Policy) Score(callCount, depth int) int {
	return callCount - depth*p.Penalty
}

// Retain reports whether a record survives pruning. Depth is derived from
// the record's canonical path.
func (p Policy) Retain(rec *extract.FileRecord) bool {
	if rec.DefCount > 0 {
		return true
	}
	if p.Keep[rec.Path] {
		return true
	}
	return p.Score(rec.CallCount, paths.Depth(rec.Path)) >= p.Threshold
}

// Apply partitions records into retained and dropped, preserving input
// order in both slices.
func Apply(records []*extract.FileRecord, policy Policy) (retained, dropped []*extract.FileRecord) {
	for _, rec := range records {
		if policy.Retain(rec) {
			retained = append(retained, rec)
		} else {
			dropped = append(dropped, rec)
		}
	}
	return retained, dropped
}
