// Package check provides read-only protocol checkers. Checkers observe
// signals from their own thread processes and never write to the design;
// violations are reported and the run continues.
package check

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// Violation reasons reported by the checkers in this package.
const (
	ReasonGlitch            = "glitch"
	ReasonSecondAlreadyHigh = "second signal is already high"
	ReasonFirstLowEarly     = "first signal went low too early"
	ReasonMaxOverrun        = "max delay overrun"
	ReasonMinUnderrun       = "min delay underrun"
)

// Reporter receives violation records. *trace.SimulationTrace satisfies it.
type Reporter interface {
	RecordViolation(record trace.ViolationRecord)
}

// base holds what every checker shares: identity, reporting and counters.
type base struct {
	name  string
	sim   *sim.Simulator
	rep   Reporter
	log   *logrus.Entry
	count int
}

func newBase(s *sim.Simulator, name string, rep Reporter) base {
	return base{
		name: name,
		sim:  s,
		rep:  rep,
		log:  s.Logger().WithField("checker", name),
	}
}

func (b *base) report(reason string) {
	now := b.sim.Now()
	b.count++
	b.log.Warnf("[t=%s] protocol violation (%s)", b.sim.Format(now), reason)
	if b.rep != nil {
		b.rep.RecordViolation(trace.ViolationRecord{Checker: b.name, Clock: int64(now), Reason: reason})
	}
}

// Name returns the checker name.
func (b *base) Name() string { return b.name }

// Violations returns how many violations the checker has reported.
func (b *base) Violations() int { return b.count }
