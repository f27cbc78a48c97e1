package sim

import (
	"runtime"

	"github.com/pkg/errors"
)

// ProcessKind distinguishes trigger-driven from continuation-driven processes.
type ProcessKind string

const (
	// KindMethod processes run their whole body to completion each time one
	// of their sensitivity triggers fires. They never suspend.
	KindMethod ProcessKind = "method"
	// KindThread processes are long-lived routines that suspend at explicit
	// waits and resume from that point.
	KindThread ProcessKind = "thread"
)

type processState int

const (
	stateIdle       processState = iota // method between activations, or thread not started
	stateReady                          // queued to run in the current delta
	stateRunning
	stateWaiting    // thread parked on a wait
	stateTerminated // thread returned, faulted or was killed
)

// ProcessOption configures a process at construction.
type ProcessOption func(*Process)

// Sensitive sets the static sensitivity of a process.
// For methods it is the set that re-triggers the body; for threads it is the
// set waited on by a bare Wait().
func Sensitive(triggers ...Trigger) ProcessOption {
	return func(p *Process) {
		p.static = append(p.static, eventsOf(triggers)...)
	}
}

// DontInitialize keeps the process from running in the initialization phase;
// it first runs when triggered.
func DontInitialize() ProcessOption {
	return func(p *Process) {
		p.dontInit = true
	}
}

// Process is a schedulable unit of work owned by a Simulator.
type Process struct {
	sim      *Simulator
	name     string
	kind     ProcessKind
	static   []*Event
	dontInit bool

	method func()
	thread func(p *Process)

	state   processState
	started bool
	resume  chan resumeCmd
	waiting *waiter
}

type resumeCmd int

const (
	resumeRun resumeCmd = iota
	resumeKill
)

type yieldKind int

const (
	yieldSuspended yieldKind = iota
	yieldFinished
	yieldKilled
	yieldFault
)

// yieldMsg is sent by a thread goroutine when it hands control back.
type yieldMsg struct {
	proc  *Process
	kind  yieldKind
	fault *ProcessFault
}

// Name returns the process name.
func (p *Process) Name() string { return p.name }

// Terminated reports whether a thread has returned.
func (p *Process) Terminated() bool { return p.state == stateTerminated }

// Wait suspends the calling thread until any of the triggers fires.
// Without arguments it waits on the static sensitivity. It returns the
// event that woke the process.
func (p *Process) Wait(triggers ...Trigger) *Event {
	evs := p.static
	if len(triggers) > 0 {
		evs = eventsOf(triggers)
	}
	if len(evs) == 0 {
		panic(errors.Errorf("process %q: wait without events or static sensitivity", p.name))
	}
	return p.park(evs, 0, false)
}

// WaitFor suspends the calling thread for d ticks. A zero duration waits
// for the next delta cycle.
func (p *Process) WaitFor(d Time) {
	p.park(nil, d, true)
}

// WaitTimeout suspends the calling thread until any of the triggers fires or
// d ticks elapse, whichever comes first. It returns the event that woke the
// process, or nil if the timeout elapsed first.
func (p *Process) WaitTimeout(d Time, triggers ...Trigger) *Event {
	return p.park(eventsOf(triggers), d, true)
}

func (p *Process) park(evs []*Event, d Time, timed bool) *Event {
	s := p.sim
	if p.kind != KindThread {
		panic(errors.Errorf("method process %q cannot wait", p.name))
	}
	if s.current != p {
		panic(errors.Errorf("process %q: wait called outside its own body", p.name))
	}
	if d < 0 {
		panic(errors.Errorf("process %q: negative wait %d", p.name, d))
	}

	w := &waiter{proc: p, events: evs}
	for _, e := range evs {
		e.waiters = append(e.waiters, w)
	}
	if timed {
		if d == 0 {
			s.deltaTimeouts = append(s.deltaTimeouts, w)
		} else {
			s.queue.schedule(&timedAction{at: s.now.Add(d), kind: actionTimeout, waiter: w})
		}
	}
	p.waiting = w
	p.state = stateWaiting
	p.suspend()
	return w.woke
}

// suspend hands control back to the scheduler and blocks until resumed.
func (p *Process) suspend() {
	p.sim.yield <- yieldMsg{proc: p, kind: yieldSuspended}
	if cmd := <-p.resume; cmd == resumeKill {
		runtime.Goexit()
	}
}

// body is the goroutine hosting a thread process.
func (p *Process) body() {
	returned := false
	defer func() {
		r := recover()
		switch {
		case r != nil:
			p.sim.yield <- yieldMsg{proc: p, kind: yieldFault, fault: newProcessFault(p, p.sim.now, r)}
		case returned:
			p.sim.yield <- yieldMsg{proc: p, kind: yieldFinished}
		default:
			p.sim.yield <- yieldMsg{proc: p, kind: yieldKilled}
		}
	}()
	if cmd := <-p.resume; cmd == resumeKill {
		return
	}
	p.thread(p)
	returned = true
}
