package testutil

import (
	"encoding/json"
	"regexp"
	"testing"
)

// ScrubJSON round-trips data through JSON and replaces the value of every
// occurrence of the named keys, at any depth, with a "(key)" placeholder.
// The result is re-marshaled with sorted keys, so equal inputs always
// produce equal bytes.
func ScrubJSON(t *testing.T, data []byte, volatileKeys ...string) []byte {
	t.Helper()

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON for scrubbing: %v", err)
	}

	keys := make(map[string]bool, len(volatileKeys))
	for _, k := range volatileKeys {
		keys[k] = true
	}
	decoded = scrubValue(decoded, keys)

	out, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		t.Fatalf("Failed to re-encode scrubbed JSON: %v", err)
	}
	return append(out, '\n')
}

func scrubValue(v interface{}, keys map[string]bool) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			if keys[k] {
				val[k] = "(" + k + ")"
				continue
			}
			val[k] = scrubValue(inner, keys)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = scrubValue(inner, keys)
		}
		return val
	default:
		return v
	}
}

// ScrubPattern replaces every match of the pattern with repl. Used for
// text artifacts where volatile values are embedded in prose.
func ScrubPattern(t *testing.T, data []byte, pattern, repl string) []byte {
	t.Helper()

	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("Bad scrub pattern %q: %v", pattern, err)
	}
	return re.ReplaceAll(data, []byte(repl))
}
