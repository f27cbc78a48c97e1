// Package scenario describes runnable simulations in YAML and wires the
// component packages into a Simulator for each built-in scenario kind.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// Spec is one scenario file. Empty strings and nil pointers mean "not set";
// the scenario kind supplies the defaults.
type Spec struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`
	Horizon    string `yaml:"horizon"`    // e.g. "500ns", or "forever"
	Resolution string `yaml:"resolution"` // length of one tick, e.g. "100ps"
	Seed       int64  `yaml:"seed"`
	Trace      string `yaml:"trace"`
	Params     Params `yaml:"params"`
}

// Params holds the tunable knobs of the built-in scenarios. Durations are in
// ticks. Each kind reads only the fields that apply to it.
type Params struct {
	Iterations *int   `yaml:"iterations"`
	Period     *int64 `yaml:"period"`
	Depth      *int   `yaml:"depth"`
	Ports      *int   `yaml:"ports"`
	MinDelay   *int64 `yaml:"min_delay"`
	MaxDelay   *int64 `yaml:"max_delay"`
	Pattern    []int  `yaml:"pattern"`
	Interval   *int   `yaml:"interval"`
	Offset     *int   `yaml:"offset"`
	MemSize    *int   `yaml:"mem_size"`
	Cycle      *int64 `yaml:"cycle"`
	Step       *int64 `yaml:"step"`
	Message    string `yaml:"message"`
}

// Forever is the horizon keyword for an unbounded run.
const Forever = "forever"

// Load reads and parses a YAML scenario file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// ValidKinds is the set of recognized scenario kinds.
// Shared by Validate() and Build() so the two cannot drift apart.
var ValidKinds = map[string]bool{
	"dataflow":   true,
	"terminator": true,
	"xbar":       true,
	"handshake":  true,
	"minmax":     true,
	"pattern":    true,
	"prodcons":   true,
	"hwfifo":     true,
	"bus":        true,
	"coeffmul":   true,
	"sourcesink": true,
	"hwsource":   true,
}

// Validate checks names and parameter ranges.
func (s *Spec) Validate() error {
	if !ValidKinds[s.Kind] {
		return fmt.Errorf("unknown scenario kind %q", s.Kind)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q", s.Trace)
	}
	if _, err := s.resolution(); err != nil {
		return err
	}
	if s.Horizon != "" && s.Horizon != Forever {
		d, err := sim.ParseDuration(s.Horizon)
		if err != nil {
			return fmt.Errorf("invalid horizon %q: %w", s.Horizon, err)
		}
		if d <= 0 {
			return fmt.Errorf("horizon must be positive, got %s", s.Horizon)
		}
	}

	p := s.Params
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"iterations", p.Iterations},
		{"depth", p.Depth},
		{"ports", p.Ports},
		{"interval", p.Interval},
		{"mem_size", p.MemSize},
	} {
		if f.v != nil && *f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, *f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    *int64
	}{
		{"period", p.Period},
		{"max_delay", p.MaxDelay},
		{"cycle", p.Cycle},
		{"step", p.Step},
	} {
		if f.v != nil && *f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", f.name, *f.v)
		}
	}
	if p.MinDelay != nil && *p.MinDelay < 0 {
		return fmt.Errorf("min_delay must be non-negative, got %d", *p.MinDelay)
	}
	if p.MinDelay != nil && p.MaxDelay != nil && *p.MinDelay > *p.MaxDelay {
		return fmt.Errorf("min_delay %d exceeds max_delay %d", *p.MinDelay, *p.MaxDelay)
	}
	if p.Offset != nil && *p.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", *p.Offset)
	}
	return nil
}

func (s *Spec) resolution() (sim.Duration, error) {
	if s.Resolution == "" {
		return sim.DefaultResolution, nil
	}
	d, err := sim.ParseDuration(s.Resolution)
	if err != nil {
		return 0, fmt.Errorf("invalid resolution %q: %w", s.Resolution, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("resolution must be positive, got %s", s.Resolution)
	}
	return d, nil
}

// horizon converts the horizon to ticks, falling back to def when unset.
func (s *Spec) horizon(res sim.Duration, def string) sim.Time {
	h := s.Horizon
	if h == "" {
		h = def
	}
	if h == Forever {
		return sim.Forever
	}
	d, err := sim.ParseDuration(h)
	if err != nil {
		return sim.Forever
	}
	return sim.Ticks(d, res)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func timeOr(v *int64, def sim.Time) sim.Time {
	if v == nil {
		return def
	}
	return sim.Time(*v)
}
