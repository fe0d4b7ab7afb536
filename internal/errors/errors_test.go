package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *RepomindError
		want string
	}{
		{
			name: "without cause",
			err:  New(RootUnreadable, "root does not exist", nil),
			want: "[ROOT_UNREADABLE] root does not exist",
		},
		{
			name: "with cause",
			err:  New(MemoryCorrupt, "memory store unreadable", fmt.Errorf("unexpected end of JSON input")),
			want: "[MEMORY_CORRUPT] memory store unreadable: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := New(RootUnreadable, "stat failed", cause)

	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is did not find the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"plain error", fmt.Errorf("boom"), InternalError},
		{"repomind error", New(ParseFailed, "bad syntax", nil), ParseFailed},
		{"wrapped repomind error", fmt.Errorf("analyze: %w", New(CacheFailed, "db locked", nil)), CacheFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSuggestedFixesAttached(t *testing.T) {
	err := New(MemoryCorrupt, "memory store unreadable", nil)
	if len(err.SuggestedFixes) == 0 {
		t.Fatal("expected suggested fixes for MEMORY_CORRUPT")
	}
	if !strings.Contains(err.SuggestedFixes[0].Command, "history") {
		t.Errorf("fix command = %q, want a history command", err.SuggestedFixes[0].Command)
	}

	plain := New(InternalError, "unexpected", nil)
	if len(plain.SuggestedFixes) != 0 {
		t.Errorf("expected no fixes for INTERNAL_ERROR, got %d", len(plain.SuggestedFixes))
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ParseFailed, "bad syntax", nil).WithDetails(map[string]string{"path": "a.py"})
	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatalf("details type = %T, want map[string]string", err.Details)
	}
	if details["path"] != "a.py" {
		t.Errorf("details[path] = %q, want %q", details["path"], "a.py")
	}
}
