package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg", "util")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "helpers.py")
	if err := os.WriteFile(file, []byte("def f(): pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(file, root)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	if got != "pkg/util/helpers.py" {
		t.Errorf("Canonicalize() = %q, want %q", got, "pkg/util/helpers.py")
	}
}

func TestCanonicalizeNonexistent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "missing", "later.go")

	got, err := Canonicalize(file, root)
	if err != nil {
		t.Fatalf("Canonicalize() error = %v", err)
	}
	if got != "missing/later.go" {
		t.Errorf("Canonicalize() = %q, want %q", got, "missing/later.go")
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "a.go")
	outside := filepath.Join(root, "..", "elsewhere.go")

	if !IsWithinRoot(inside, root) {
		t.Errorf("IsWithinRoot(%q) = false, want true", inside)
	}
	if IsWithinRoot(outside, root) {
		t.Errorf("IsWithinRoot(%q) = true, want false", outside)
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"main.py", 0},
		{"pkg/mod.py", 1},
		{"a/b/c/d.rs", 3},
		{".", 0},
		{"", 0},
		{`pkg\win\mod.py`, 2},
	}

	for _, tt := range tests {
		if got := Depth(tt.path); got != tt.want {
			t.Errorf("Depth(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestJoinRoot(t *testing.T) {
	got := JoinRoot("/repo", "pkg/util/helpers.py")
	want := filepath.Join("/repo", "pkg", "util", "helpers.py")
	if got != want {
		t.Errorf("JoinRoot() = %q, want %q", got, want)
	}
}
