package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/check"
	"github.com/inference-sim/delta-sim/sim/trace"
)

func intPtr(v int) *int { return &v }
func timePtr(v int64) *int64 { return &v }

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run builds and runs spec, returning the instance and result.
func run(t *testing.T, spec *Spec) (*Instance, sim.RunResult) {
	t.Helper()
	in, err := Build(spec, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = in.Close() })
	res, err := in.Run()
	require.NoError(t, err)
	return in, res
}

func fact(t *testing.T, in *Instance, name string) string {
	t.Helper()
	for _, f := range in.Facts() {
		if f.Name == name {
			return f.Value
		}
	}
	t.Fatalf("no fact %q in %v", name, in.Facts())
	return ""
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeTempYAML(t, `
kind: minmax
name: window
horizon: 100ns
resolution: 1ns
seed: 7
trace: values
params:
  min_delay: 2
  max_delay: 5
  pattern: [0, 2, 3]
`)
	spec, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "minmax", spec.Kind)
	assert.Equal(t, "window", spec.Name)
	assert.Equal(t, "100ns", spec.Horizon)
	assert.Equal(t, int64(7), spec.Seed)
	assert.Equal(t, "values", spec.Trace)
	require.NotNil(t, spec.Params.MinDelay)
	assert.Equal(t, int64(2), *spec.Params.MinDelay)
	assert.Equal(t, []int{0, 2, 3}, spec.Params.Pattern)
	assert.Nil(t, spec.Params.Iterations, "unset params stay nil")
	assert.NoError(t, spec.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeTempYAML(t, "kind: [unterminated"))
	assert.Error(t, err)
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		valid bool
	}{
		{"minimal", Spec{Kind: "dataflow"}, true},
		{"forever", Spec{Kind: "bus", Horizon: Forever}, true},
		{"unknown kind", Spec{Kind: "fir"}, false},
		{"empty kind", Spec{}, false},
		{"unknown trace level", Spec{Kind: "bus", Trace: "verbose"}, false},
		{"bad horizon", Spec{Kind: "bus", Horizon: "soon"}, false},
		{"negative horizon", Spec{Kind: "bus", Horizon: "-1ns"}, false},
		{"bad resolution", Spec{Kind: "bus", Resolution: "tiny"}, false},
		{"zero iterations", Spec{Kind: "dataflow", Params: Params{Iterations: intPtr(0)}}, false},
		{"zero period", Spec{Kind: "xbar", Params: Params{Period: timePtr(0)}}, false},
		{"min above max", Spec{Kind: "minmax", Params: Params{MinDelay: timePtr(6), MaxDelay: timePtr(5)}}, false},
		{"negative min", Spec{Kind: "minmax", Params: Params{MinDelay: timePtr(-1)}}, false},
		{"negative offset", Spec{Kind: "pattern", Params: Params{Offset: intPtr(-1)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSpec_Validate_ReportsFirstInvalidFieldInOrder(t *testing.T) {
	// GIVEN several invalid fields at once
	spec := Spec{Kind: "xbar", Params: Params{
		MemSize:    intPtr(0),
		Ports:      intPtr(-2),
		Iterations: intPtr(0),
		Step:       timePtr(0),
	}}

	// WHEN validating repeatedly
	// THEN the same field is reported every time
	for i := 0; i < 20; i++ {
		err := spec.Validate()
		require.Error(t, err)
		assert.Equal(t, "iterations must be positive, got 0", err.Error())
	}
}

func TestSpec_Validate_SubNanosecondResolution(t *testing.T) {
	assert.NoError(t, (&Spec{Kind: "pattern", Resolution: "100ps", Horizon: "2.5ns"}).Validate())
	assert.Error(t, (&Spec{Kind: "pattern", Resolution: "100qs"}).Validate())
	assert.Error(t, (&Spec{Kind: "pattern", Resolution: "0"}).Validate())
}

func TestCatalog_MatchesValidKinds(t *testing.T) {
	entries := Catalog()
	assert.Len(t, entries, len(ValidKinds))
	for i, e := range entries {
		assert.True(t, ValidKinds[e.Kind], "catalog kind %q not in ValidKinds", e.Kind)
		assert.NotEmpty(t, e.Description)
		if i > 0 {
			assert.Less(t, entries[i-1].Kind, e.Kind, "catalog sorted by kind")
		}
	}
}

func TestBuild_InvalidSpec_Rejected(t *testing.T) {
	_, err := Build(&Spec{Kind: "nope"}, nil)
	assert.Error(t, err)
}

func TestBuild_InvalidParams_WrapsConfigError(t *testing.T) {
	// GIVEN a pattern that is not strictly increasing
	spec := &Spec{Kind: "pattern", Params: Params{Pattern: []int{1, 5, 3}}}

	// WHEN building
	_, err := Build(spec, nil)

	// THEN the component's configuration error surfaces
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestBuild_Horizon(t *testing.T) {
	// GIVEN a 100ps resolution and a 1ns horizon
	in, err := Build(&Spec{Kind: "bus", Horizon: "1ns", Resolution: "100ps"}, nil)
	require.NoError(t, err)
	defer in.Close()

	// THEN the horizon is 10 ticks
	assert.Equal(t, sim.Time(10), in.Horizon)
	assert.Equal(t, in.Sim.ID(), in.Trace.Config.RunID)
	assert.Equal(t, trace.TraceLevelNone, in.Trace.Config.Level)

	in2, err := Build(&Spec{Kind: "dataflow"}, nil)
	require.NoError(t, err)
	defer in2.Close()
	assert.Equal(t, sim.Forever, in2.Horizon, "dataflow defaults to an unbounded run")
}

func TestDataflowScenario_HaltsByStarvation(t *testing.T) {
	in, res := run(t, &Spec{Kind: "dataflow"})

	assert.Equal(t, sim.ReasonStalled, res.Reason)
	assert.Equal(t, "[43 44 45 46 47 48 49 50 51 52]", fact(t, in, "printed"))
}

func TestTerminatorScenario_Stops(t *testing.T) {
	in, res := run(t, &Spec{Kind: "terminator", Params: Params{Iterations: intPtr(5)}})

	assert.Equal(t, sim.ReasonStopped, res.Reason)
	assert.Equal(t, "10 values", fact(t, in, "printer"))
	assert.Equal(t, "5 values", fact(t, in, "printer2"))
}

func TestXbarScenario_BothPrintersServed(t *testing.T) {
	// GIVEN the two-port crossbar with decision tracing
	in, res := run(t, &Spec{Kind: "xbar", Trace: "decisions"})

	// THEN both printers finish and every grant was traced
	assert.Equal(t, sim.ReasonTimeLimit, res.Reason)
	assert.Equal(t, "10 values", fact(t, in, "P1"))
	assert.Equal(t, "20 values", fact(t, in, "P2"))
	assert.NotEmpty(t, in.Trace.Grants)

	// THEN each input was granted until its printer and output FIFO were full
	assert.Equal(t, "[15 25]", fact(t, in, "grants per input"))
	summary := trace.Summarize(in.Trace)
	assert.Positive(t, summary.GrantDistribution[0])
	assert.Positive(t, summary.GrantDistribution[1])
}

func TestHandshakeScenario_ReportsGlitches(t *testing.T) {
	// GIVEN data toggling every 10ns while valid stays high for 100ns
	in, _ := run(t, &Spec{Kind: "handshake", Horizon: "100ns"})

	// THEN every data change after the simultaneous one at t=0 is a glitch
	assert.Equal(t, "9", fact(t, in, "glitches"))
	require.Len(t, in.Trace.Violations, 9)
	assert.Equal(t, int64(10), in.Trace.Violations[0].Clock)
	assert.Equal(t, check.ReasonGlitch, in.Trace.Violations[0].Reason)
}

func TestMinMaxScenario_ReportsEachViolationKind(t *testing.T) {
	// GIVEN the reference waveforms checked against a [2, 5] window
	in, _ := run(t, &Spec{Kind: "minmax", Horizon: "100ns", Trace: "values"})

	// THEN the four protocol violations appear in order
	want := []trace.ViolationRecord{
		{Checker: "the_checker", Clock: 31, Reason: check.ReasonMinUnderrun},
		{Checker: "the_checker", Clock: 55, Reason: check.ReasonMaxOverrun},
		{Checker: "the_checker", Clock: 70, Reason: check.ReasonSecondAlreadyHigh},
		{Checker: "the_checker", Clock: 92, Reason: check.ReasonFirstLowEarly},
	}
	assert.Equal(t, want, in.Trace.Violations)
	assert.Equal(t, "4", fact(t, in, "violations"))
	assert.NotEmpty(t, in.Trace.ChangesOf("first"), "signal values traced")
}

func TestPatternScenario_NoEmptySlots(t *testing.T) {
	in, _ := run(t, &Spec{Kind: "pattern"})

	assert.Equal(t, "0", fact(t, in, "empty input slots"))
	assert.NotEqual(t, "-1", fact(t, in, "last output"))
}

func TestProdConsScenario_ReproducibleFromSeed(t *testing.T) {
	spec := &Spec{Kind: "prodcons", Seed: 42, Horizon: "200ns"}
	a, _ := run(t, spec)
	b, _ := run(t, spec)

	assert.Equal(t, fact(t, a, "text"), fact(t, b, "text"))
	assert.NotEqual(t, "0 characters", fact(t, a, "received"))
}

func TestHWFifoScenario_DeliversCharacters(t *testing.T) {
	in, _ := run(t, &Spec{Kind: "hwfifo", Seed: 1, Params: Params{Message: "ab"}})

	assert.NotEqual(t, "0 characters", fact(t, in, "received"))
	assert.Contains(t, fact(t, in, "text"), "ab")
}

func TestBusScenario_ReaderAndWriterBothServed(t *testing.T) {
	in, _ := run(t, &Spec{Kind: "bus"})

	assert.NotEqual(t, "0", fact(t, in, "reads"))
	assert.NotEqual(t, "0", fact(t, in, "writes"))
}

func TestCoeffMulScenario_ProductsFollowCoefficient(t *testing.T) {
	in, res := run(t, &Spec{Kind: "coeffmul"})

	assert.Equal(t, sim.ReasonTimeLimit, res.Reason)
	assert.Equal(t, sim.Time(3000), res.Now)
	assert.Equal(t, "[19 39 59 79 99 119 139 159 179 199]", fact(t, in, "printed"))
}

func TestSourceSinkScenario_StallsAfterHundredValues(t *testing.T) {
	in, res := run(t, &Spec{Kind: "sourcesink"})

	assert.Equal(t, sim.ReasonStalled, res.Reason)
	assert.Equal(t, []string{"source"}, res.Blocked)
	assert.Equal(t, "100 values", fact(t, in, "sink"))
	assert.Equal(t, "100", fact(t, in, "last"))
}

func TestHWSourceScenario_OneValuePerEdge(t *testing.T) {
	// GIVEN the handshake source and sink on a 10ns clock for 200ns
	in, res := run(t, &Spec{Kind: "hwsource", Trace: "values"})

	// THEN the sink receives 1..19, one per edge after the first
	assert.Equal(t, sim.ReasonTimeLimit, res.Reason)
	assert.Equal(t, "19 values", fact(t, in, "sink"))
	assert.Equal(t, "19", fact(t, in, "last"))
	assert.NotEmpty(t, in.Trace.ChangesOf("source_valid"))
}
