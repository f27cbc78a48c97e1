package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/delta-sim/sim/scenario"
)

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestApplyOverrides_OnlyChangedFlagsWin(t *testing.T) {
	// GIVEN a scenario file with its own seed, horizon and trace level
	spec := &scenario.Spec{Kind: "minmax", Seed: 7, Horizon: "100ns", Trace: "values"}
	seed, horizon, traceLevel, scenarioKind = 99, "50ns", "none", "dataflow"

	// WHEN only --seed was given on the command line
	applyOverrides(spec, changedSet("seed"))

	// THEN the seed is overridden and everything else comes from the file
	assert.Equal(t, int64(99), spec.Seed)
	assert.Equal(t, "minmax", spec.Kind)
	assert.Equal(t, "100ns", spec.Horizon)
	assert.Equal(t, "values", spec.Trace)

	// WHEN horizon, trace and scenario are given too
	applyOverrides(spec, changedSet("horizon", "trace", "scenario"))

	// THEN they replace the file's values
	assert.Equal(t, "50ns", spec.Horizon)
	assert.Equal(t, "none", spec.Trace)
	assert.Equal(t, "dataflow", spec.Kind)
}

func TestLoadSpec_BuiltinAndFile(t *testing.T) {
	spec, err := loadSpec("", "bus")
	require.NoError(t, err)
	assert.Equal(t, "bus", spec.Kind)

	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: xbar\nseed: 3\n"), 0644))
	spec, err = loadSpec(path, "bus")
	require.NoError(t, err)
	assert.Equal(t, "xbar", spec.Kind, "file wins over the default kind")
	assert.Equal(t, int64(3), spec.Seed)

	_, err = loadSpec(filepath.Join(t.TempDir(), "missing.yaml"), "bus")
	assert.Error(t, err)
}

func TestWriteViolations_Table(t *testing.T) {
	// GIVEN the min/max scenario run long enough to record violations
	in, err := scenario.Build(&scenario.Spec{Kind: "minmax", Horizon: "100ns"}, nil)
	require.NoError(t, err)
	defer in.Close()
	_, err = in.Run()
	require.NoError(t, err)

	// WHEN the violation report is written
	var buf bytes.Buffer
	writeViolations(&buf, in)

	// THEN each violation and the per-reason totals appear
	out := buf.String()
	assert.Contains(t, out, "the_checker")
	assert.Contains(t, out, "max delay overrun")
	assert.Contains(t, out, "55ns")
	assert.Contains(t, out, "4 violations")
}

func TestWriteViolations_None(t *testing.T) {
	in, err := scenario.Build(&scenario.Spec{Kind: "dataflow"}, nil)
	require.NoError(t, err)
	defer in.Close()
	_, err = in.Run()
	require.NoError(t, err)

	var buf bytes.Buffer
	writeViolations(&buf, in)

	assert.Equal(t, "No protocol violations.\n", buf.String())
}

func TestWriteCatalog_ListsEveryScenario(t *testing.T) {
	var buf bytes.Buffer
	writeCatalog(&buf)

	out := buf.String()
	for kind := range scenario.ValidKinds {
		assert.Contains(t, out, kind)
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["scenarios"])

	f := runCmd.Flags().Lookup("seed")
	require.NotNil(t, f)
	assert.Equal(t, "42", f.DefValue)
}
