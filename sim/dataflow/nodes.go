// Package dataflow provides untimed dataflow building blocks connected by
// FIFO channels: sources, arithmetic, forks, sinks and a terminator, plus a
// few clocked converters and stimulus generators built on the same kernel.
package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// Number is the set of payload types the arithmetic nodes accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func unbound(kind, name string) error {
	return errors.Wrapf(sim.ErrInvalidConfig, "%s %q: port not bound", kind, name)
}

// NewConst writes v to out forever.
func NewConst[T any](s *sim.Simulator, name string, v T, out sim.Writer[T]) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("const", name)
	}
	return s.Thread(name, func(p *sim.Process) {
		for {
			out.Write(p, v)
		}
	})
}

// NewRamp writes init, init+inc, init+2*inc, ... to out.
func NewRamp[T Number](s *sim.Simulator, name string, init, inc T, out sim.Writer[T]) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("ramp", name)
	}
	return s.Thread(name, func(p *sim.Process) {
		for v := init; ; v += inc {
			out.Write(p, v)
		}
	})
}

// NewAdder writes the sum of one value from each input, pairwise.
func NewAdder[T Number](s *sim.Simulator, name string, in1, in2 sim.Reader[T], out sim.Writer[T]) (*sim.Process, error) {
	if in1 == nil || in2 == nil || out == nil {
		return nil, unbound("adder", name)
	}
	return s.Thread(name, func(p *sim.Process) {
		for {
			a := in1.Read(p)
			b := in2.Read(p)
			out.Write(p, a+b)
		}
	})
}

// NewFork copies every value read from in to both outputs, out1 first.
func NewFork[T any](s *sim.Simulator, name string, in sim.Reader[T], out1, out2 sim.Writer[T]) (*sim.Process, error) {
	if in == nil || out1 == nil || out2 == nil {
		return nil, unbound("fork", name)
	}
	return s.Thread(name, func(p *sim.Process) {
		for {
			v := in.Read(p)
			out1.Write(p, v)
			out2.Write(p, v)
		}
	})
}
