package prune

import (
	"testing"

	"repomind/internal/extract"
)

func record(path string, defined, called []string) *extract.FileRecord {
	return extract.NewFileRecord(path, defined, called)
}

func callerRecord(path string, callCount int) *extract.FileRecord {
	called := make([]string, callCount)
	for i := range called {
		called[i] = "fn" + string(rune('a'+i))
	}
	return extract.NewFileRecord(path, nil, called)
}

func TestRetainDefinitionsAlwaysKept(t *testing.T) {
	policy := Policy{Penalty: 1, Threshold: 4}

	// One definition outweighs any depth.
	rec := record("a/b/c/d/e/f/deep.py", []string{"f"}, nil)
	if !policy.Retain(rec) {
		t.Error("record with definitions was dropped")
	}
}

func TestRetainScoring(t *testing.T) {
	policy := Policy{Penalty: 1, Threshold: 4}

	tests := []struct {
		name string
		rec  *extract.FileRecord
		want bool
	}{
		// score = calls - depth*1, retained when >= 4
		{"shallow heavy caller", callerRecord("glue.py", 5), true},
		{"score equals threshold", callerRecord("glue.py", 4), true},
		{"score below threshold", callerRecord("glue.py", 3), false},
		{"deep heavy caller", callerRecord("a/b/hub.py", 6), true},
		{"deep light caller", callerRecord("a/b/hub.py", 5), false},
		{"no defs no calls", record("empty.py", nil, nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Retain(tt.rec); got != tt.want {
				t.Errorf("Retain(%s) = %v, want %v", tt.rec.Path, got, tt.want)
			}
		})
	}
}

func TestRetainMonotonicInCallCount(t *testing.T) {
	policy := Policy{Penalty: 1, Threshold: 4}

	// If a record is retained at call count n, it must be retained at n+1.
	for n := 0; n < 10; n++ {
		lower := policy.Retain(callerRecord("x/y/mod.py", n))
		higher := policy.Retain(callerRecord("x/y/mod.py", n+1))
		if lower && !higher {
			t.Fatalf("retention inverted between call counts %d and %d", n, n+1)
		}
	}
}

func TestRetainKeepList(t *testing.T) {
	policy := Policy{
		Penalty:   1,
		Threshold: 4,
		Keep:      map[string]bool{"cli/entry.py": true},
	}

	pinned := record("cli/entry.py", nil, nil)
	if !policy.Retain(pinned) {
		t.Error("pinned record was dropped")
	}

	unpinned := record("cli/other.py", nil, nil)
	if policy.Retain(unpinned) {
		t.Error("unpinned empty record was retained")
	}
}

func TestZeroPenaltyIgnoresDepth(t *testing.T) {
	policy := Policy{Penalty: 0, Threshold: 2}

	deep := callerRecord("a/b/c/d/e/mod.py", 2)
	if !policy.Retain(deep) {
		t.Error("with zero penalty, depth must not matter")
	}
}

func TestApplyPartition(t *testing.T) {
	policy := Policy{Penalty: 1, Threshold: 4}

	records := []*extract.FileRecord{
		record("one.py", []string{"f"}, nil),
		callerRecord("two.py", 1),
		callerRecord("three.py", 9),
	}

	retained, dropped := Apply(records, policy)

	if len(retained) != 2 {
		t.Fatalf("retained %d records, want 2", len(retained))
	}
	if retained[0].Path != "one.py" || retained[1].Path != "three.py" {
		t.Errorf("retained order = [%s %s], want [one.py three.py]", retained[0].Path, retained[1].Path)
	}
	if len(dropped) != 1 || dropped[0].Path != "two.py" {
		t.Errorf("dropped = %v, want [two.py]", dropped)
	}
}
