//go:build cgo

package doccheck

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"repomind/internal/errors"
	"repomind/internal/extract"
)

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	c := NewChecker()
	if c == nil {
		t.Skip("tree-sitter not available")
	}
	return c
}

func TestCheckSource_Python(t *testing.T) {
	source := []byte(`def documented():
    """Has a docstring."""
    return 1

def bare():
    return 2

@cached
def wrapped():
    """Decorated but documented."""
    return 3

class Engine:
    """Engine doc."""

    def run(self):
        """Run doc."""
        pass

    def stop(self):
        pass
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "app.py", source, extract.LangPython)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	if fr.Checked != 6 {
		t.Errorf("Checked = %d, want 6", fr.Checked)
	}
	want := []string{"bare", "stop"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_PythonCommentIsNotDocstring(t *testing.T) {
	source := []byte(`# A comment above is not a docstring.
def helper():
    return 1
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "helper.py", source, extract.LangPython)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	want := []string{"helper"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_Go(t *testing.T) {
	source := []byte(`package main

// Documented does things.
func Documented() {}

func bare() {}

/* inline block */
func blockDocumented() {}

// stale, separated by a blank line

func lonely() {}
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "main.go", source, extract.LangGo)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	if fr.Checked != 4 {
		t.Errorf("Checked = %d, want 4", fr.Checked)
	}
	want := []string{"bare", "lonely"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_TypeScript(t *testing.T) {
	source := []byte(`// Client talks to the server.
class Client {
  // connect dials the endpoint.
  connect() {}

  disconnect() {}
}

function helper() {}
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "client.ts", source, extract.LangTypeScript)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	if fr.Checked != 4 {
		t.Errorf("Checked = %d, want 4", fr.Checked)
	}
	want := []string{"disconnect", "helper"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_Java(t *testing.T) {
	source := []byte(`class App {
    /** Starts the app. */
    void start() {}

    void stop() {}
}
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "App.java", source, extract.LangJava)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	if fr.Checked != 3 {
		t.Errorf("Checked = %d, want 3", fr.Checked)
	}
	want := []string{"App", "stop"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_Rust(t *testing.T) {
	source := []byte(`/// Parses raw input.
fn parse() {}

fn main() {
    parse();
}
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "main.rs", source, extract.LangRust)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	want := []string{"main"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_Kotlin(t *testing.T) {
	source := []byte(`// Greets the caller.
fun greet() {}

fun bare() {}
`)

	c := newTestChecker(t)
	fr, err := c.CheckSource(context.Background(), "app.kt", source, extract.LangKotlin)
	if err != nil {
		t.Fatalf("CheckSource() error = %v", err)
	}

	if fr.Checked != 2 {
		t.Errorf("Checked = %d, want 2", fr.Checked)
	}
	want := []string{"bare"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}

func TestCheckSource_SyntaxError(t *testing.T) {
	c := newTestChecker(t)
	_, err := c.CheckSource(context.Background(), "broken.py", []byte("def broken(:\n"), extract.LangPython)
	if err == nil {
		t.Fatal("CheckSource() on broken source succeeded, want error")
	}
	if got := errors.CodeOf(err); got != errors.ParseFailed {
		t.Errorf("error code = %q, want %q", got, errors.ParseFailed)
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thing.py")
	source := "def visible():\n    pass\n"
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	c := newTestChecker(t)
	fr, err := c.CheckFile(context.Background(), path, "thing.py")
	if err != nil {
		t.Fatalf("CheckFile() error = %v", err)
	}

	if fr.Path != "thing.py" {
		t.Errorf("Path = %q, want %q", fr.Path, "thing.py")
	}
	want := []string{"visible"}
	if !reflect.DeepEqual(fr.Missing, want) {
		t.Errorf("Missing = %v, want %v", fr.Missing, want)
	}
}
