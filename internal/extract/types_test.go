package extract

import (
	"reflect"
	"testing"
)

func TestNewFileRecord(t *testing.T) {
	rec := NewFileRecord("pkg/core.py",
		[]string{"beta", "alpha", "beta", ""},
		[]string{"run", "run", "draw"})

	if rec.Path != "pkg/core.py" {
		t.Errorf("Path = %q, want %q", rec.Path, "pkg/core.py")
	}
	if !reflect.DeepEqual(rec.Defined, []string{"alpha", "beta"}) {
		t.Errorf("Defined = %v, want [alpha beta]", rec.Defined)
	}
	if !reflect.DeepEqual(rec.Called, []string{"draw", "run"}) {
		t.Errorf("Called = %v, want [draw run]", rec.Called)
	}
	if rec.DefCount != 2 {
		t.Errorf("DefCount = %d, want 2", rec.DefCount)
	}
	if rec.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", rec.CallCount)
	}
}

func TestNewFileRecordEmpty(t *testing.T) {
	rec := NewFileRecord("empty.py", nil, nil)
	if rec.DefCount != 0 || rec.CallCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", rec.DefCount, rec.CallCount)
	}
	if len(rec.Defined) != 0 || len(rec.Called) != 0 {
		t.Errorf("sets = %v/%v, want empty", rec.Defined, rec.Called)
	}
}

func TestLanguageFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
		ok   bool
	}{
		{".go", LangGo, true},
		{".py", LangPython, true},
		{".pyw", LangPython, true},
		{".js", LangJavaScript, true},
		{".jsx", LangJavaScript, true},
		{".ts", LangTypeScript, true},
		{".tsx", LangTSX, true},
		{".rs", LangRust, true},
		{".java", LangJava, true},
		{".kt", LangKotlin, true},
		{".md", "", false},
		{".json", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromExtension(tt.ext)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LanguageFromExtension(%q) = %q, %v, want %q, %v", tt.ext, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsSupportedPath(t *testing.T) {
	if !IsSupportedPath("/repo/pkg/core.py") {
		t.Error("core.py should be supported")
	}
	if !IsSupportedPath("Core.PY") {
		t.Error("extension match should be case-insensitive")
	}
	if IsSupportedPath("/repo/README.md") {
		t.Error("README.md should not be supported")
	}
	if IsSupportedPath("/repo/Makefile") {
		t.Error("extensionless files should not be supported")
	}
}
