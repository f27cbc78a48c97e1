// Package testutil provides shared test infrastructure for the simulator.
// It holds the golden scenario dataset types and assertion helpers used by
// the scenario and cmd test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one built-in scenario run with fixed seed and horizon.
type GoldenTestCase struct {
	Name    string        `json:"name"`
	Kind    string        `json:"kind"`
	Seed    int64         `json:"seed"`
	Horizon string        `json:"horizon"`
	Metrics GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected outcome of a golden test case.
// Everything here is derived from simulated time, so it is exact.
type GoldenMetrics struct {
	Reason             string            `json:"reason"`
	EndTime            int64             `json:"end_time"`
	Violations         int               `json:"violations"`
	ViolationsByReason map[string]int    `json:"violations_by_reason"`
	Facts              map[string]string `json:"facts"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFacts checks that every expected fact is present with the expected value.
// Extra facts in got are ignored.
func AssertFacts(t *testing.T, name string, want, got map[string]string) {
	t.Helper()
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, ok := got[k]
		if !ok {
			t.Errorf("%s: missing fact %q", name, k)
			continue
		}
		if v != want[k] {
			t.Errorf("%s: fact %q = %q, want %q", name, k, v, want[k])
		}
	}
}
