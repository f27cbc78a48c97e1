package check

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// GlitchChecker reports a data change while the companion valid signal is
// asserted. A valid signal that changed in the same update as the data is
// excused, so data launched together with valid is not a glitch.
type GlitchChecker struct {
	base
	data  sim.Trigger
	valid *sim.BoolSignal
}

// NewGlitchChecker watches data against valid. rep may be nil, in which case
// violations are only logged and counted.
func NewGlitchChecker(s *sim.Simulator, name string, data sim.Trigger, valid *sim.BoolSignal, rep Reporter) (*GlitchChecker, error) {
	if data == nil || valid == nil {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "glitch checker %q: data and valid must be bound", name)
	}
	c := &GlitchChecker{
		base:  newBase(s, name, rep),
		data:  data,
		valid: valid,
	}
	if _, err := s.Thread(name, c.run); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GlitchChecker) run(p *sim.Process) {
	for {
		p.Wait(c.data)
		if c.valid.Read() && !c.valid.Event() {
			c.report(ReasonGlitch)
		}
	}
}
