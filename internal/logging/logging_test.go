package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name        string
		configLevel LogLevel
		logLevel    LogLevel
		shouldLog   bool
	}{
		{"debug logs at debug level", DebugLevel, DebugLevel, true},
		{"info logs at debug level", DebugLevel, InfoLevel, true},
		{"debug suppressed at info level", InfoLevel, DebugLevel, false},
		{"warn logs at info level", InfoLevel, WarnLevel, true},
		{"info suppressed at warn level", WarnLevel, InfoLevel, false},
		{"error always logs", ErrorLevel, ErrorLevel, true},
		{"warn suppressed at error level", ErrorLevel, WarnLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(Config{
				Format: HumanFormat,
				Level:  tt.configLevel,
				Output: &buf,
			})

			logger.log(tt.logLevel, "message", nil)

			got := buf.Len() > 0
			if got != tt.shouldLog {
				t.Errorf("logged = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: JSONFormat,
		Level:  DebugLevel,
		Output: &buf,
	})

	logger.Info("walk complete", map[string]interface{}{
		"files": 42,
		"root":  "/tmp/repo",
	})

	var entry struct {
		Timestamp string                 `json:"timestamp"`
		Level     string                 `json:"level"`
		Message   string                 `json:"message"`
		Fields    map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if entry.Level != "info" {
		t.Errorf("level = %q, want %q", entry.Level, "info")
	}
	if entry.Message != "walk complete" {
		t.Errorf("message = %q, want %q", entry.Message, "walk complete")
	}
	if entry.Fields["files"] != float64(42) {
		t.Errorf("fields[files] = %v, want 42", entry.Fields["files"])
	}
	if entry.Timestamp == "" {
		t.Error("timestamp is empty")
	}
}

func TestHumanFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: HumanFormat,
		Level:  DebugLevel,
		Output: &buf,
	})

	logger.Warn("file skipped", map[string]interface{}{"path": "big.py"})

	out := buf.String()
	if !strings.Contains(out, "[warn]") {
		t.Errorf("output missing level marker: %q", out)
	}
	if !strings.Contains(out, "file skipped") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "path=big.py") {
		t.Errorf("output missing field: %q", out)
	}
}

func TestHumanFormatNoFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Format: HumanFormat,
		Level:  InfoLevel,
		Output: &buf,
	})

	logger.Info("done", nil)

	out := buf.String()
	if strings.Contains(out, "|") {
		t.Errorf("output has field separator with no fields: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic or write anywhere visible.
	logger.Error("ignored", map[string]interface{}{"k": "v"})
}
