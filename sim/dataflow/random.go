package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// NewRandomProducer cycles through data, writing the next value to out with
// probability 1/2 at each step. Draws come from the simulator's RNG stream
// for this process, so runs are reproducible from the seed.
func NewRandomProducer[T any](s *sim.Simulator, name string, out sim.Writer[T], data []T, step sim.Time) (*sim.Process, error) {
	if out == nil {
		return nil, unbound("producer", name)
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "producer %q: no data", name)
	}
	if step <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "producer %q: step must be positive, got %d", name, step)
	}
	rng := s.RNG(sim.SubsystemProcess(name))
	return s.Thread(name, func(p *sim.Process) {
		for i := 0; ; {
			if rng.Intn(2) == 1 {
				out.Write(p, data[i])
				i = (i + 1) % len(data)
			}
			p.WaitFor(step)
		}
	})
}

// RandomConsumer reads from its input with probability 1/2 at each step.
type RandomConsumer[T any] struct {
	received []T
}

// NewRandomConsumer creates the consumer.
func NewRandomConsumer[T any](s *sim.Simulator, name string, in sim.Reader[T], step sim.Time) (*RandomConsumer[T], error) {
	if in == nil {
		return nil, unbound("consumer", name)
	}
	if step <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "consumer %q: step must be positive, got %d", name, step)
	}
	c := &RandomConsumer[T]{}
	rng := s.RNG(sim.SubsystemProcess(name))
	log := s.Logger().WithField("node", name)
	_, err := s.Thread(name, func(p *sim.Process) {
		for {
			if rng.Intn(2) == 1 {
				v := in.Read(p)
				c.received = append(c.received, v)
				log.Tracef("[t=%s] received %v", s.Format(s.Now()), v)
			}
			p.WaitFor(step)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Received returns every value read, in order.
func (c *RandomConsumer[T]) Received() []T { return c.received }
