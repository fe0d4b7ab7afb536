package cache

import (
	"path/filepath"
	"reflect"
	"testing"

	"repomind/internal/extract"
	"repomind/internal/logging"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), ".repomind", "cache.db"), logging.Discard())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHashSource(t *testing.T) {
	a := HashSource([]byte("def f(): pass\n"))
	b := HashSource([]byte("def f(): pass\n"))
	c := HashSource([]byte("def g(): pass\n"))

	if a != b {
		t.Error("equal content produced different hashes")
	}
	if a == c {
		t.Error("different content produced equal hashes")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestGetMiss(t *testing.T) {
	c := openTestCache(t)

	rec, ok, err := c.Get(HashSource([]byte("nothing")))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || rec != nil {
		t.Error("expected a miss on empty cache")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)

	source := []byte("def f():\n    g()\n")
	hash := HashSource(source)
	orig := extract.NewFileRecord("pkg/mod.py", []string{"f"}, []string{"g"})

	if err := c.Put(hash, "pkg/mod.py", orig); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := c.Get(hash)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if !reflect.DeepEqual(got.Defined, orig.Defined) || !reflect.DeepEqual(got.Called, orig.Called) {
		t.Errorf("cached record = %+v, want %+v", got, orig)
	}
	if got.DefCount != 1 || got.CallCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", got.DefCount, got.CallCount)
	}
	// Path is not part of the cached payload.
	if got.Path != "" {
		t.Errorf("cached record carries path %q, want empty", got.Path)
	}
}

func TestPutOverwrites(t *testing.T) {
	c := openTestCache(t)

	hash := HashSource([]byte("content"))
	first := extract.NewFileRecord("a.py", []string{"old"}, nil)
	second := extract.NewFileRecord("a.py", []string{"new"}, nil)

	if err := c.Put(hash, "a.py", first); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(hash, "a.py", second); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get(hash)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got.Defined, []string{"new"}) {
		t.Errorf("Defined = %v, want [new]", got.Defined)
	}

	n, err := c.Len()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1 after overwrite", n)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	c, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	hash := HashSource([]byte("persistent"))
	if err := c.Put(hash, "p.py", extract.NewFileRecord("p.py", []string{"f"}, nil)); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	_, ok, err := reopened.Get(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("entry lost across reopen")
	}
}
