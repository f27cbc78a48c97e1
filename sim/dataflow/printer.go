package dataflow

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/delta-sim/sim"
)

// Printer reads a fixed number of values, logging and keeping each one.
// After the last one it raises its done signal, if bound, and then either
// returns or keeps draining its input so upstream nodes never back up.
type Printer[T any] struct {
	name   string
	sim    *sim.Simulator
	n      int
	values []T
	times  []sim.Time
	done   *sim.BoolSignal
	drain  bool
	log    *logrus.Entry
}

// PrinterConfig holds the optional parts of a Printer.
type PrinterConfig struct {
	Done  *sim.BoolSignal // raised after the last value, may be nil
	Drain bool            // keep reading after the last value
}

// NewPrinter creates a printer reading n values from in.
func NewPrinter[T any](s *sim.Simulator, name string, n int, in sim.Reader[T], cfg PrinterConfig) (*Printer[T], error) {
	if in == nil {
		return nil, unbound("printer", name)
	}
	if n < 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "printer %q: negative iteration count %d", name, n)
	}
	pr := &Printer[T]{
		name:  name,
		sim:   s,
		n:     n,
		done:  cfg.Done,
		drain: cfg.Drain,
		log:   s.Logger().WithField("node", name),
	}
	if _, err := s.Thread(name, func(p *sim.Process) { pr.run(p, in) }); err != nil {
		return nil, err
	}
	return pr, nil
}

func (pr *Printer[T]) run(p *sim.Process, in sim.Reader[T]) {
	for i := 0; i < pr.n; i++ {
		v := in.Read(p)
		pr.values = append(pr.values, v)
		pr.times = append(pr.times, pr.sim.Now())
		pr.log.Infof("[t=%s] %v", pr.sim.Format(pr.sim.Now()), v)
	}
	if pr.done != nil {
		pr.done.Write(true)
	}
	if !pr.drain {
		return
	}
	for {
		in.Read(p)
	}
}

// Name returns the printer name.
func (pr *Printer[T]) Name() string { return pr.name }

// Values returns the values read so far, in order.
func (pr *Printer[T]) Values() []T { return pr.values }

// Times returns the simulated time at which each value was read.
func (pr *Printer[T]) Times() []sim.Time { return pr.times }

// Done reports whether all n values have been read.
func (pr *Printer[T]) Done() bool { return len(pr.values) >= pr.n }

// NewTerminator stops the run as soon as every input reads true.
func NewTerminator(s *sim.Simulator, name string, inputs ...*sim.BoolSignal) (*sim.Process, error) {
	if len(inputs) == 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "terminator %q: no inputs", name)
	}
	triggers := make([]sim.Trigger, len(inputs))
	for i, in := range inputs {
		triggers[i] = in
	}
	return s.Method(name, func() {
		for _, in := range inputs {
			if !in.Read() {
				return
			}
		}
		s.Logger().WithField("node", name).Infof("[t=%s] all inputs done, stopping", s.Format(s.Now()))
		s.Stop()
	}, sim.Sensitive(triggers...), sim.DontInitialize())
}
