package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// NewCoeffMul multiplies every value read from in by the current value of
// the coefficient signal and writes the product to out. The coefficient is
// sampled when the input value arrives.
func NewCoeffMul[T Number](s *sim.Simulator, name string, in sim.Reader[T], coeff *sim.Signal[T], out sim.Writer[T]) (*sim.Process, error) {
	if in == nil || coeff == nil || out == nil {
		return nil, unbound("coefficient multiplier", name)
	}
	return s.Thread(name, func(p *sim.Process) {
		for {
			v := in.Read(p)
			out.Write(p, v*coeff.Read())
		}
	})
}

// NewSignalRamp drives out with init, init+inc, ... changing every interval ticks.
func NewSignalRamp[T Number](s *sim.Simulator, name string, interval sim.Time, init, inc T, out *sim.Signal[T]) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("signal ramp", name)
	}
	if interval <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "signal ramp %q: interval must be positive, got %d", name, interval)
	}
	return s.Thread(name, func(p *sim.Process) {
		for v := init; ; v += inc {
			out.Write(v)
			p.WaitFor(interval)
		}
	})
}

// NewTimedConst writes v to out once every period ticks, the first time
// after one period.
func NewTimedConst[T any](s *sim.Simulator, name string, v T, period sim.Time, out sim.Writer[T]) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("timed const", name)
	}
	if period <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "timed const %q: period must be positive, got %d", name, period)
	}
	return s.Thread(name, func(p *sim.Process) {
		for {
			p.WaitFor(period)
			out.Write(p, v)
		}
	})
}
