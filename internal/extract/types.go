// Package extract produces per-file records of defined and called function
// names via tree-sitter. No code is executed and no imports are resolved;
// a member call like x.f() contributes only the trailing name f.
package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// FileRecord is the extraction result for one source file. Records are
// immutable once built; Defined and Called are deduplicated and sorted.
type FileRecord struct {
	// Path is the canonical root-relative path. It is the key in the
	// digest's files map, so it is not serialized inside the record.
	Path string `json:"-" yaml:"-"`

	Defined []string `json:"defined" yaml:"defined"`
	Called  []string `json:"called" yaml:"called"`

	DefCount  int `json:"def_count" yaml:"def_count"`
	CallCount int `json:"call_count" yaml:"call_count"`
}

// NewFileRecord builds a FileRecord from raw name lists. Duplicates are
// collapsed and the sets are sorted so equal inputs always produce equal
// records regardless of extraction order.
func NewFileRecord(path string, defined, called []string) *FileRecord {
	d := uniqueSorted(defined)
	c := uniqueSorted(called)
	return &FileRecord{
		Path:      path,
		Defined:   d,
		Called:    c,
		DefCount:  len(d),
		CallCount: len(c),
	}
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch ext {
	case ".go":
		return LangGo, true
	case ".js", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".jsx":
		return LangJavaScript, true // JSX uses JS parser
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	default:
		return "", false
	}
}

// LanguageForPath returns the Language for a file path.
func LanguageForPath(path string) (Language, bool) {
	return LanguageFromExtension(strings.ToLower(filepath.Ext(path)))
}

// IsSupportedPath reports whether the extractor recognizes this path's
// extension. The walker uses it to drop non-source files early.
func IsSupportedPath(path string) bool {
	_, ok := LanguageForPath(path)
	return ok
}
