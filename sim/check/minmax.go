package check

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// MinMaxChecker verifies that a rising edge on second follows a rising edge
// on first within [min, max] ticks. Each armed window ends in at most one
// report:
//
//	WaitFirst --posedge(first)--> Armed --change(first|second) or max elapsed--> WaitFirst
//
// An edge on second arriving exactly at max is reported as an overrun: the
// timeout is taken when time advances, before the edge is committed.
type MinMaxChecker struct {
	base
	first, second *sim.BoolSignal
	min, max      sim.Time
}

// NewMinMaxChecker creates the checker. min must be non-negative and at most
// max, and max must be positive.
func NewMinMaxChecker(s *sim.Simulator, name string, first, second *sim.BoolSignal, min, max sim.Time, rep Reporter) (*MinMaxChecker, error) {
	switch {
	case first == nil || second == nil:
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "min/max checker %q: first and second must be bound", name)
	case min < 0 || max <= 0:
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "min/max checker %q: delays must be non-negative with max > 0, got [%d, %d]", name, min, max)
	case min > max:
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "min/max checker %q: min %d exceeds max %d", name, min, max)
	}
	c := &MinMaxChecker{
		base:   newBase(s, name, rep),
		first:  first,
		second: second,
		min:    min,
		max:    max,
	}
	if _, err := s.Thread(name, c.run); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *MinMaxChecker) run(p *sim.Process) {
	for {
		p.Wait(c.first.Posedge())
		if c.second.Read() {
			c.report(ReasonSecondAlreadyHigh)
			continue
		}

		before := c.sim.Now()
		p.WaitTimeout(c.max, c.first.Changed(), c.second.Changed())

		switch {
		case c.first.Event():
			c.report(ReasonFirstLowEarly)
		case !c.second.Event():
			c.report(ReasonMaxOverrun)
		case c.sim.Now().Sub(before) < c.min:
			c.report(ReasonMinUnderrun)
		}
	}
}
