package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the analysis root
// - Converts backslashes to forward slashes
// - Returns root-relative path with forward slashes
func Canonicalize(absolutePath string, root string) (string, error) {
	// Resolve symlinks
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		// If the file doesn't exist yet, use the path as-is
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	// Convert to forward slashes (platform independent)
	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot checks if a path is within the analysis root
func IsWithinRoot(path string, root string) bool {
	canonical, err := Canonicalize(path, root)
	if err != nil {
		return false
	}

	// Path is outside the root if it starts with ..
	return !strings.HasPrefix(canonical, "..")
}

// Normalize normalizes a path by converting backslashes to forward slashes
// This is useful for paths that are already relative but need normalization
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// JoinRoot joins the analysis root with a canonical path
func JoinRoot(root string, canonicalPath string) string {
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	// Convert to OS-specific path separator for joining
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{root}, parts...)...)
}

// Depth returns the directory depth of a canonical root-relative path.
// Files directly under the root have depth 0.
func Depth(canonicalPath string) int {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	if normalized == "" || normalized == "." {
		return 0
	}
	return strings.Count(normalized, "/")
}
