package scenario

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// Fact is one line of a scenario's outcome, e.g. {"printed", "[43 44 45]"}.
type Fact struct {
	Name  string
	Value string
}

// Entry describes a built-in scenario kind.
type Entry struct {
	Kind           string
	Description    string
	DefaultHorizon string
	build          func(b *builder) (func() []Fact, error)
}

var catalog = map[string]Entry{
	"dataflow": {
		Description:    "constant, adder and fork in a feedback loop feeding a printer; halts by starvation",
		DefaultHorizon: Forever,
		build:          buildDataflow,
	},
	"terminator": {
		Description:    "two feedback loops whose printers raise done signals; a terminator stops the run",
		DefaultHorizon: Forever,
		build:          buildTerminator,
	},
	"xbar": {
		Description:    "ramps routed through a round-robin crossbar into printers",
		DefaultHorizon: "500ns",
		build:          buildXbar,
	},
	"handshake": {
		Description:    "data toggling on a fast clock checked for glitches against a slow valid signal",
		DefaultHorizon: "1000ns",
		build:          buildHandshake,
	},
	"minmax": {
		Description:    "two waveforms checked against a min/max delay window",
		DefaultHorizon: "500ns",
		build:          buildMinMax,
	},
	"pattern": {
		Description:    "ramp converted from a FIFO to a signal following a timing pattern",
		DefaultHorizon: "200ns",
		build:          buildPattern,
	},
	"prodcons": {
		Description:    "random producer and consumer over a bounded FIFO",
		DefaultHorizon: "1000ns",
		build:          buildProdCons,
	},
	"hwfifo": {
		Description:    "random producer and consumer over a clocked ready/valid hardware FIFO",
		DefaultHorizon: "1000ns",
		build:          buildHWFifo,
	},
	"bus": {
		Description:    "reader and writer contending for a mutex-serialized bus",
		DefaultHorizon: "200ns",
		build:          buildBus,
	},
	"coeffmul": {
		Description:    "timed constant multiplied by a ramping coefficient signal",
		DefaultHorizon: "3000ns",
		build:          buildCoeffMul,
	},
	"sourcesink": {
		Description:    "untimed counting source and 100-value sink over a FIFO; stalls when the sink is done",
		DefaultHorizon: Forever,
		build:          buildSourceSink,
	},
	"hwsource": {
		Description:    "counting source and sink joined through handshake adapters and a hardware FIFO",
		DefaultHorizon: "200ns",
		build:          buildHWSource,
	},
}

// Catalog lists the built-in scenarios sorted by kind.
func Catalog() []Entry {
	out := make([]Entry, 0, len(catalog))
	for kind, e := range catalog {
		e.Kind = kind
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Instance is a scenario wired into a fresh simulator, ready to run.
type Instance struct {
	Spec    *Spec
	Sim     *sim.Simulator
	Trace   *trace.SimulationTrace
	Horizon sim.Time
	facts   func() []Fact
}

// Build validates spec and elaborates its scenario. Kernel metrics are
// registered on reg when it is non-nil.
func Build(spec *Spec, reg prometheus.Registerer) (*Instance, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	entry := catalog[spec.Kind]
	res, _ := spec.resolution()
	name := spec.Name
	if name == "" {
		name = spec.Kind
	}
	s, err := sim.NewSimulator(sim.Config{Name: name, Resolution: res, Seed: spec.Seed, Registerer: reg})
	if err != nil {
		return nil, fmt.Errorf("creating simulator: %w", err)
	}

	level := trace.TraceLevel(spec.Trace)
	if level == "" {
		level = trace.TraceLevelNone
	}
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: level, RunID: s.ID()})

	b := &builder{s: s, st: st, p: spec.Params}
	facts, err := entry.build(b)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("building %s scenario: %w", spec.Kind, err)
	}
	return &Instance{
		Spec:    spec,
		Sim:     s,
		Trace:   st,
		Horizon: spec.horizon(res, entry.DefaultHorizon),
		facts:   facts,
	}, nil
}

// Run simulates up to the horizon.
func (in *Instance) Run() (sim.RunResult, error) {
	logrus.Infof("Starting %s scenario %q, horizon=%s, seed=%d",
		in.Spec.Kind, in.Sim.Name(), in.Sim.Format(in.Horizon), in.Spec.Seed)
	return in.Sim.Run(in.Horizon)
}

// Facts reports the scenario-specific outcome, valid after Run.
func (in *Instance) Facts() []Fact { return in.facts() }

// Close terminates any thread still parked in the simulator.
func (in *Instance) Close() error { return in.Sim.Shutdown() }
