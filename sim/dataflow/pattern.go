package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/check"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// ReasonInputEmpty is reported when a pattern slot finds no data to transfer.
const ReasonInputEmpty = "input FIFO empty"

// PatternConfig describes when a PatternConverter transfers data.
type PatternConfig struct {
	// Pattern lists the cycles within each interval at which one value is
	// transferred. It must be strictly increasing and below Interval.
	Pattern  []int
	Interval int
	// Offset is the number of clock edges skipped before the first interval.
	Offset int
}

// Validate checks the timing pattern.
func (c PatternConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.Wrapf(sim.ErrInvalidConfig, "interval must be positive, got %d", c.Interval)
	}
	if c.Offset < 0 {
		return errors.Wrapf(sim.ErrInvalidConfig, "offset must be non-negative, got %d", c.Offset)
	}
	if len(c.Pattern) == 0 {
		return errors.Wrap(sim.ErrInvalidConfig, "no timing pattern")
	}
	prev := -1
	for _, slot := range c.Pattern {
		if slot <= prev {
			return errors.Wrapf(sim.ErrInvalidConfig, "timing pattern %v is not strictly increasing", c.Pattern)
		}
		prev = slot
	}
	if prev >= c.Interval {
		return errors.Wrapf(sim.ErrInvalidConfig, "timing pattern slot %d outside interval %d", prev, c.Interval)
	}
	return nil
}

// PatternConverter turns a FIFO stream into a signal updated on a fixed
// periodic timing pattern of clock edges.
type PatternConverter[T comparable] struct {
	name   string
	sim    *sim.Simulator
	cfg    PatternConfig
	in     sim.FIFOReader[T]
	out    *sim.Signal[T]
	rep    check.Reporter
	misses int
}

// NewPatternConverter creates the converter clocked by edge. Empty-input
// slots are reported to rep, which may be nil.
func NewPatternConverter[T comparable](s *sim.Simulator, name string, edge sim.Trigger, in sim.FIFOReader[T], out *sim.Signal[T], cfg PatternConfig, rep check.Reporter) (*PatternConverter[T], error) {
	if edge == nil || in == nil || out == nil {
		return nil, unbound("pattern converter", name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "pattern converter %q", name)
	}
	c := &PatternConverter[T]{
		name: name,
		sim:  s,
		cfg:  cfg,
		in:   in,
		out:  out,
		rep:  rep,
	}
	if _, err := s.Thread(name, c.run, sim.Sensitive(edge), sim.DontInitialize()); err != nil {
		return nil, err
	}
	return c, nil
}

// Misses returns how many pattern slots found the input empty.
func (c *PatternConverter[T]) Misses() int { return c.misses }

func (c *PatternConverter[T]) run(p *sim.Process) {
	for i := 0; i < c.cfg.Offset; i++ {
		p.Wait()
	}
	for counter, index := 0, 0; ; {
		if counter == c.cfg.Pattern[index] {
			c.transfer()
			index = (index + 1) % len(c.cfg.Pattern)
		}
		counter = (counter + 1) % c.cfg.Interval
		p.Wait()
	}
}

func (c *PatternConverter[T]) transfer() {
	v, ok := c.in.TryRead()
	if !ok {
		c.misses++
		c.sim.Logger().WithField("node", c.name).Warnf("[t=%s] %s", c.sim.Format(c.sim.Now()), ReasonInputEmpty)
		if c.rep != nil {
			c.rep.RecordViolation(trace.ViolationRecord{Checker: c.name, Clock: int64(c.sim.Now()), Reason: ReasonInputEmpty})
		}
		return
	}
	c.out.Write(v)
}
