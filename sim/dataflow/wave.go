package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// NewWaveGen toggles out after each delay in turn, repeating the list
// forever. The first toggle flips the signal's current value.
func NewWaveGen(s *sim.Simulator, name string, out *sim.BoolSignal, delays []sim.Time) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("wave generator", name)
	}
	if len(delays) == 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "wave generator %q: empty waveform", name)
	}
	for i, d := range delays {
		if d <= 0 {
			return nil, errors.Wrapf(sim.ErrInvalidConfig, "wave generator %q: delay %d is %d, must be positive", name, i, d)
		}
	}
	w := append([]sim.Time(nil), delays...)
	log := s.Logger().WithField("node", name)
	return s.Thread(name, func(p *sim.Process) {
		state := out.Read()
		for {
			for _, d := range w {
				p.WaitFor(d)
				state = !state
				out.Write(state)
				log.Debugf("[t=%s] output=%t", s.Format(s.Now()), state)
			}
		}
	})
}
