// Package xbar implements an abstract crossbar that moves at most one value
// per clock edge from input i to output i, granting inputs round-robin.
package xbar

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// GrantRecorder receives one record per grant. *trace.SimulationTrace satisfies it.
type GrantRecorder interface {
	RecordGrant(record trace.GrantRecord)
}

// Option configures a Crossbar.
type Option func(*options)

type options struct {
	recorder GrantRecorder
}

// WithRecorder records every grant.
func WithRecorder(r GrantRecorder) Option {
	return func(o *options) { o.recorder = r }
}

// Crossbar routes input i to output i. On each edge it scans the inputs
// starting just after the last granted index and grants the first one with
// data available whose paired output has free capacity. Without any
// eligible candidate the state is left unchanged.
type Crossbar[T any] struct {
	name    string
	sim     *sim.Simulator
	inputs  []sim.FIFOReader[T]
	outputs []sim.FIFOWriter[T]
	last    int
	grants  []int
	rec     GrantRecorder
	log     *logrus.Entry
}

// New creates a crossbar clocked by edge, typically a clock's Posedge().
// Inputs and outputs are paired by index and must be non-empty and of equal
// length.
func New[T any](s *sim.Simulator, name string, edge sim.Trigger, inputs []sim.FIFOReader[T], outputs []sim.FIFOWriter[T], opts ...Option) (*Crossbar[T], error) {
	switch {
	case edge == nil:
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "crossbar %q: no clock bound", name)
	case len(inputs) == 0:
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "crossbar %q: no inputs", name)
	case len(inputs) != len(outputs):
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "crossbar %q: %d inputs but %d outputs", name, len(inputs), len(outputs))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	x := &Crossbar[T]{
		name:    name,
		sim:     s,
		inputs:  inputs,
		outputs: outputs,
		last:    -1,
		grants:  make([]int, len(inputs)),
		rec:     o.recorder,
		log:     s.Logger().WithField("xbar", name),
	}
	if _, err := s.Method(name, x.arbitrate, sim.Sensitive(edge), sim.DontInitialize()); err != nil {
		return nil, err
	}
	return x, nil
}

// Name returns the crossbar name.
func (x *Crossbar[T]) Name() string { return x.name }

// LastGranted returns the index granted most recently, or -1 before the first grant.
func (x *Crossbar[T]) LastGranted() int { return x.last }

// Grants returns how many times each index has been granted.
func (x *Crossbar[T]) Grants() []int {
	out := make([]int, len(x.grants))
	copy(out, x.grants)
	return out
}

func (x *Crossbar[T]) arbitrate() {
	n := len(x.inputs)
	for i := 1; i <= n; i++ {
		c := (x.last + i) % n
		if x.inputs[c].Available() == 0 || x.outputs[c].FreeCapacity() == 0 {
			continue
		}
		v, _ := x.inputs[c].TryRead()
		x.outputs[c].TryWrite(v)
		x.last = c
		x.grants[c]++
		x.log.Debugf("[t=%s] granted input %d after scanning %d", x.sim.Format(x.sim.Now()), c, i)
		if x.rec != nil {
			x.rec.RecordGrant(trace.GrantRecord{Arbiter: x.name, Clock: int64(x.sim.Now()), Index: c, Scanned: i})
		}
		return
	}
}
