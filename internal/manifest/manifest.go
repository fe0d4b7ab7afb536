// Package manifest reads the optional repomind.toml checked in at the root
// of an analyzed project. The manifest lets a project extend the exclusion
// vocabulary and pin files that pruning must never drop.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the default filename for a project manifest
const ManifestFile = "repomind.toml"

// Manifest represents the root structure of repomind.toml
type Manifest struct {
	// Version is the schema version
	Version int `toml:"version"`

	Walk  WalkSection  `toml:"walk,omitempty"`
	Prune PruneSection `toml:"prune,omitempty"`
}

// WalkSection extends file discovery rules
type WalkSection struct {
	// ExtraExcludes are appended to the base-name exclusion vocabulary
	ExtraExcludes []string `toml:"extra_excludes,omitempty"`

	// IgnoreDirs are additional directory names never descended into
	IgnoreDirs []string `toml:"ignore_dirs,omitempty"`
}

// PruneSection extends retention rules
type PruneSection struct {
	// AlwaysKeep lists root-relative paths that survive pruning regardless
	// of their retention score
	AlwaysKeep []string `toml:"always_keep,omitempty"`
}

// Parse parses a repomind.toml file from the given path
func Parse(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}

	if m.Version < 1 {
		m.Version = 1
	}

	// Keep paths canonical so they match digest entries.
	for i, p := range m.Prune.AlwaysKeep {
		m.Prune.AlwaysKeep[i] = strings.ReplaceAll(p, "\\", "/")
	}

	return &m, nil
}

// Load reads <root>/repomind.toml if it exists. A missing manifest is not
// an error and yields nil.
func Load(root string) (*Manifest, error) {
	filePath := filepath.Join(root, ManifestFile)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	}

	return Parse(filePath)
}

// Write writes a manifest to the given path
func Write(filePath string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", ManifestFile, err)
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}

	return nil
}

// CreateExample creates an example repomind.toml file
func CreateExample(filePath string) error {
	example := &Manifest{
		Version: 1,
		Walk: WalkSection{
			ExtraExcludes: []string{"legacy", "scratch"},
			IgnoreDirs:    []string{"build", "dist"},
		},
		Prune: PruneSection{
			AlwaysKeep: []string{"cli/main.py"},
		},
	}

	return Write(filePath, example)
}

// KeepSet returns the always-keep paths as a lookup set
func (m *Manifest) KeepSet() map[string]bool {
	if m == nil || len(m.Prune.AlwaysKeep) == 0 {
		return nil
	}
	keep := make(map[string]bool, len(m.Prune.AlwaysKeep))
	for _, p := range m.Prune.AlwaysKeep {
		keep[p] = true
	}
	return keep
}
