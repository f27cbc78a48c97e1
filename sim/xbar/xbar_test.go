package xbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/trace"
)

type fixture struct {
	s       *sim.Simulator
	clk     *sim.Clock
	ins     []*sim.FIFO[int]
	outs    []*sim.FIFO[int]
	tr      *trace.SimulationTrace
	xbar    *Crossbar[int]
	readers []sim.FIFOReader[int]
	writers []sim.FIFOWriter[int]
}

// newFixture builds an n-port crossbar on a period-10 clock. Input i is
// preloaded with fill[i] values; output i has capacity outCap[i].
func newFixture(t *testing.T, fill, outCap []int) *fixture {
	t.Helper()
	s, err := sim.NewSimulator(sim.Config{Name: t.Name()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	clk, err := sim.NewClock(s, "clk", 10)
	require.NoError(t, err)

	f := &fixture{s: s, clk: clk, tr: trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})}
	for i := range fill {
		in, err := sim.NewFIFO[int](s, "in", 8)
		require.NoError(t, err)
		for v := 0; v < fill[i]; v++ {
			require.True(t, in.TryWrite(100*i+v))
		}
		out, err := sim.NewFIFO[int](s, "out", outCap[i])
		require.NoError(t, err)
		f.ins = append(f.ins, in)
		f.outs = append(f.outs, out)
		f.readers = append(f.readers, in)
		f.writers = append(f.writers, out)
	}
	f.xbar, err = New(s, "xbar", clk.Posedge(), f.readers, f.writers, WithRecorder(f.tr))
	require.NoError(t, err)
	return f
}

func (f *fixture) granted() []int {
	out := []int{}
	for _, g := range f.tr.Grants {
		out = append(out, g.Index)
	}
	return out
}

func TestCrossbar_TwoReadyInputs_AlternateGrants(t *testing.T) {
	// GIVEN two permanently ready inputs with roomy outputs
	f := newFixture(t, []int{5, 5}, []int{8, 8})

	// WHEN two clock edges elapse (t=0 and t=10)
	_, err := f.s.Run(20)
	require.NoError(t, err)

	// THEN each index is granted exactly once and last_granted moved to 1
	assert.Equal(t, []int{0, 1}, f.granted())
	assert.Equal(t, 1, f.xbar.LastGranted())
	assert.Equal(t, 1, f.outs[0].Available())
	assert.Equal(t, 1, f.outs[1].Available())

	// WHEN two more edges elapse
	_, err = f.s.Run(20)
	require.NoError(t, err)

	// THEN the grants keep alternating
	assert.Equal(t, []int{0, 1, 0, 1}, f.granted())
	assert.Equal(t, []int{2, 2}, f.xbar.Grants())
}

func TestCrossbar_RoutesInputToPairedOutput(t *testing.T) {
	// GIVEN distinct values on each input
	f := newFixture(t, []int{2, 2}, []int{8, 8})

	// WHEN four edges elapse
	_, err := f.s.Run(40)
	require.NoError(t, err)

	// THEN every value lands on the output with the same index, in order
	for i, out := range f.outs {
		for v := 0; v < 2; v++ {
			got, ok := out.TryRead()
			require.True(t, ok)
			assert.Equal(t, 100*i+v, got)
		}
	}
}

func TestCrossbar_EmptyInput_Skipped(t *testing.T) {
	// GIVEN input 0 empty and input 1 loaded
	f := newFixture(t, []int{0, 5}, []int{8, 8})

	// WHEN three edges elapse
	_, err := f.s.Run(30)
	require.NoError(t, err)

	// THEN input 1 is granted every tick
	assert.Equal(t, []int{1, 1, 1}, f.granted())
	for _, g := range f.tr.Grants[1:] {
		assert.Equal(t, 2, g.Scanned, "index 0 is scanned first after granting 1")
	}
}

func TestCrossbar_FullOutput_Skipped(t *testing.T) {
	// GIVEN output 0 with room for a single value that is never drained
	f := newFixture(t, []int{5, 5}, []int{1, 8})

	// WHEN four edges elapse
	_, err := f.s.Run(40)
	require.NoError(t, err)

	// THEN after the first grant only index 1 can make progress
	assert.Equal(t, []int{0, 1, 1, 1}, f.granted())
	assert.Equal(t, 4, f.ins[0].Available())
}

func TestCrossbar_NoEligibleCandidate_StateUnchanged(t *testing.T) {
	// GIVEN both inputs empty
	f := newFixture(t, []int{0, 0}, []int{8, 8})

	// WHEN edges elapse
	_, err := f.s.Run(30)
	require.NoError(t, err)

	// THEN nothing is granted and the last index stays unset
	assert.Empty(t, f.granted())
	assert.Equal(t, -1, f.xbar.LastGranted())
}

func TestCrossbar_StarvationFree_WithDrainedOutputs(t *testing.T) {
	// GIVEN three loaded inputs whose outputs are drained by consumers
	f := newFixture(t, []int{8, 8, 8}, []int{1, 1, 1})
	for i, out := range f.outs {
		out := out
		_, err := f.s.Thread("drain", func(p *sim.Process) {
			for {
				out.Read(p)
			}
		})
		require.NoError(t, err, "drain %d", i)
	}

	// WHEN six edges elapse
	_, err := f.s.Run(60)
	require.NoError(t, err)

	// THEN every input is serviced within each window of N ticks
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, f.granted())
}

func TestNew_InvalidConfig(t *testing.T) {
	s, err := sim.NewSimulator(sim.Config{})
	require.NoError(t, err)
	in, err := sim.NewFIFO[int](s, "in", 1)
	require.NoError(t, err)
	edge := sim.NewEvent(s, "edge")

	tests := []struct {
		name    string
		edge    sim.Trigger
		inputs  []sim.FIFOReader[int]
		outputs []sim.FIFOWriter[int]
	}{
		{"no inputs", edge, nil, nil},
		{"mismatched ports", edge, []sim.FIFOReader[int]{in}, []sim.FIFOWriter[int]{in, in}},
		{"no clock", nil, []sim.FIFOReader[int]{in}, []sim.FIFOWriter[int]{in}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(s, "x", tt.edge, tt.inputs, tt.outputs)
			assert.ErrorIs(t, err, sim.ErrInvalidConfig)
		})
	}
}
