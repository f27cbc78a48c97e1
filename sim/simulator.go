package sim

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StopReason tells why a Run returned.
type StopReason string

const (
	// ReasonExhausted: nothing runnable, nothing scheduled, no thread parked.
	ReasonExhausted StopReason = "exhausted"
	// ReasonStalled: threads are parked on events that nothing can fire anymore.
	ReasonStalled StopReason = "stalled"
	// ReasonStopped: a process called Stop.
	ReasonStopped StopReason = "stopped"
	// ReasonTimeLimit: simulated time reached the run limit.
	ReasonTimeLimit StopReason = "time-limit"
	// ReasonFault: a process body panicked.
	ReasonFault StopReason = "fault"
)

// RunResult summarizes how a Run ended.
type RunResult struct {
	Reason  StopReason
	Now     Time
	Deltas  uint64   // delta cycles executed since the simulator was created
	Blocked []string // threads parked forever when Reason is ReasonStalled
}

// Simulator is the discrete-event kernel: it owns simulated time, the timed
// queue, and the processes, and runs the evaluate/update delta-cycle loop.
//
// All process bodies execute one at a time. Threads live on their own
// goroutines but only run while the scheduler has handed control to them, so
// signal, event and channel state needs no locking.
type Simulator struct {
	cfg Config
	id  string
	log *logrus.Entry

	now   Time
	delta uint64
	stamp uint64 // advances every delta cycle and every time advance
	queue *EventQueue

	processes     []*Process
	runnable      []*Process
	updates       []updater
	deltaEvents   []*Event
	deltaTimeouts []*waiter

	current *Process
	yield   chan yieldMsg

	elaborated    bool
	running       bool
	stopRequested bool
	shutdown      bool
	fault         error

	metrics *Metrics
	rng     *PartitionedRNG
}

// NewSimulator creates a simulator. Configuration errors fail fast.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	id := uuid.NewString()
	s := &Simulator{
		cfg:     cfg,
		id:      id,
		log:     logrus.WithFields(logrus.Fields{"sim": cfg.Name, "run": id}),
		queue:   newEventQueue(),
		yield:   make(chan yieldMsg),
		metrics: NewMetrics(cfg.Name),
		rng:     NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
	}
	if cfg.Registerer != nil {
		if err := cfg.Registerer.Register(s.metrics); err != nil {
			return nil, errors.Wrap(err, "registering kernel metrics")
		}
	}
	return s, nil
}

// ID returns the unique run identifier of this simulator.
func (s *Simulator) ID() string { return s.id }

// Name returns the configured simulator name.
func (s *Simulator) Name() string { return s.cfg.Name }

// Now returns the current simulated time.
func (s *Simulator) Now() Time { return s.now }

// Delta returns the number of delta cycles started so far.
func (s *Simulator) Delta() uint64 { return s.delta }

// Resolution returns the physical length of one tick.
func (s *Simulator) Resolution() Duration { return s.cfg.Resolution }

// Ticks converts a physical duration to ticks at the simulator resolution.
func (s *Simulator) Ticks(d Duration) Time { return Ticks(d, s.cfg.Resolution) }

// Format renders t in physical units.
func (s *Simulator) Format(t Time) string { return t.Format(s.cfg.Resolution) }

// Metrics returns the kernel statistics.
func (s *Simulator) Metrics() *Metrics { return s.metrics }

// RNG returns the deterministic random source for a subsystem.
func (s *Simulator) RNG(subsystem string) *rand.Rand { return s.rng.ForSubsystem(subsystem) }

// Logger returns the simulator's log entry.
func (s *Simulator) Logger() *logrus.Entry { return s.log }

// Current returns the process currently executing, or nil.
func (s *Simulator) Current() *Process { return s.current }

// Processes returns all processes in creation order.
func (s *Simulator) Processes() []*Process { return s.processes }

// Method creates a trigger-driven process. Unless DontInitialize is given it
// also runs once during initialization.
func (s *Simulator) Method(name string, fn func(), opts ...ProcessOption) (*Process, error) {
	if fn == nil {
		return nil, invalidConfig("method %q: nil body", name)
	}
	p, err := s.newProcess(name, KindMethod, opts)
	if err != nil {
		return nil, err
	}
	if p.dontInit && len(p.static) == 0 {
		return nil, invalidConfig("method %q: no sensitivity and not initialized, it would never run", name)
	}
	p.method = fn
	for _, e := range p.static {
		e.methods = append(e.methods, p)
	}
	return p, nil
}

// Thread creates a continuation-driven process. The body receives its own
// Process handle, through which it waits.
func (s *Simulator) Thread(name string, fn func(p *Process), opts ...ProcessOption) (*Process, error) {
	if fn == nil {
		return nil, invalidConfig("thread %q: nil body", name)
	}
	p, err := s.newProcess(name, KindThread, opts)
	if err != nil {
		return nil, err
	}
	p.thread = fn
	return p, nil
}

func (s *Simulator) newProcess(name string, kind ProcessKind, opts []ProcessOption) (*Process, error) {
	if s.elaborated {
		return nil, errors.Wrapf(ErrElaborated, "creating %s %q", kind, name)
	}
	p := &Process{sim: s, name: name, kind: kind}
	for _, opt := range opts {
		opt(p)
	}
	s.processes = append(s.processes, p)
	return p, nil
}

// Stop ends the run after the current delta cycle completes.
func (s *Simulator) Stop() {
	s.stopRequested = true
}

// Run simulates for at most d ticks (Forever for no limit) and returns when
// the run ends: nothing left to do, all remaining threads stalled, Stop was
// called, or the time limit was reached. Activity scheduled exactly at the
// limit is left for the next Run. A fault in a process body ends the run
// with a *ProcessFault and the simulator cannot be run again.
func (s *Simulator) Run(d Time) (RunResult, error) {
	switch {
	case s.shutdown:
		return RunResult{}, ErrShutdown
	case s.fault != nil:
		return s.result(ReasonFault), s.fault
	case s.running:
		return RunResult{}, ErrRunning
	case d < 0:
		return RunResult{}, invalidConfig("negative run duration %d", d)
	}

	s.running = true
	defer func() { s.running = false }()
	s.stopRequested = false

	if !s.elaborated {
		s.elaborated = true
		s.initialize()
	}

	limit := Forever
	if d != Forever {
		limit = s.now.Add(d)
	}
	s.log.Infof("[t=%s] run started, limit=%s", s.Format(s.now), s.Format(limit))

	for {
		if err := s.settle(); err != nil {
			s.fault = err
			s.log.Errorf("[t=%s] %v", s.Format(s.now), err)
			s.killThreads()
			return s.result(ReasonFault), err
		}
		if s.stopRequested {
			return s.finish(ReasonStopped), nil
		}

		s.queue.prune()
		next := s.queue.peek()
		if next == nil {
			if len(s.blocked()) > 0 {
				return s.finish(ReasonStalled), nil
			}
			return s.finish(ReasonExhausted), nil
		}
		if next.at >= limit {
			s.now = limit
			s.metrics.SimTime.Set(float64(s.now))
			return s.finish(ReasonTimeLimit), nil
		}
		s.advance(next.at)
	}
}

func (s *Simulator) result(reason StopReason) RunResult {
	r := RunResult{Reason: reason, Now: s.now, Deltas: s.delta}
	if reason == ReasonStalled {
		r.Blocked = s.blocked()
	}
	return r
}

func (s *Simulator) finish(reason StopReason) RunResult {
	r := s.result(reason)
	if reason == ReasonStalled {
		s.log.Warnf("[t=%s] run stalled, blocked threads: %v", s.Format(s.now), r.Blocked)
	} else {
		s.log.Infof("[t=%s] run ended: %s after %d delta cycles", s.Format(s.now), reason, s.delta)
	}
	return r
}

// initialize makes every process runnable except those created with
// DontInitialize; such threads instead wait on their static sensitivity.
func (s *Simulator) initialize() {
	for _, p := range s.processes {
		if !p.dontInit {
			s.makeRunnable(p)
			continue
		}
		if p.kind == KindThread && len(p.static) > 0 {
			w := &waiter{proc: p, events: p.static}
			for _, e := range p.static {
				e.waiters = append(e.waiters, w)
			}
			p.waiting = w
			p.state = stateWaiting
		}
	}
}

// settle runs delta cycles at the current time until convergence: no
// runnable process, no pending update, no pending delta notification.
func (s *Simulator) settle() error {
	for len(s.runnable) > 0 || len(s.updates) > 0 || len(s.deltaEvents) > 0 || len(s.deltaTimeouts) > 0 {
		s.delta++
		s.stamp++
		s.log.Tracef("[t=%s] delta %d: %d runnable", s.Format(s.now), s.delta, len(s.runnable))

		// evaluate
		for len(s.runnable) > 0 {
			p := s.runnable[0]
			s.runnable[0] = nil
			s.runnable = s.runnable[1:]
			if err := s.execute(p); err != nil {
				return err
			}
		}

		// update
		ups := s.updates
		s.updates = nil
		for _, u := range ups {
			u.update()
		}

		// delta notification
		evs := s.deltaEvents
		s.deltaEvents = nil
		for _, e := range evs {
			if e.deltaPending {
				e.deltaPending = false
				s.fire(e, s.stamp+1)
			}
		}
		tos := s.deltaTimeouts
		s.deltaTimeouts = nil
		for _, w := range tos {
			s.wake(w, nil)
		}

		s.metrics.DeltaCycles.Inc()
		if s.stopRequested {
			return nil
		}
	}
	return nil
}

// advance moves time to t and processes every timed action due at t.
func (s *Simulator) advance(t Time) {
	s.log.Debugf("[t=%s] advancing time", s.Format(t))
	s.now = t
	// Firings that no delta cycle observed before the time advance go stale.
	s.stamp++
	s.metrics.TimeAdvances.Inc()
	s.metrics.SimTime.Set(float64(t))
	for a := s.queue.peek(); a != nil && a.at == t; a = s.queue.peek() {
		s.queue.popNext()
		if !a.live() {
			continue
		}
		switch a.kind {
		case actionNotify:
			a.event.timedPending = false
			s.fire(a.event, s.stamp+1)
		case actionTimeout:
			s.wake(a.waiter, nil)
		}
	}
}

func (s *Simulator) requestUpdate(u updater) {
	s.updates = append(s.updates, u)
}

// fire notifies every current waiter and statically sensitive method of e.
func (s *Simulator) fire(e *Event, visibleIn uint64) {
	e.generation++
	e.triggeredIn = visibleIn
	s.metrics.EventsFired.Inc()
	ws := e.waiters
	e.waiters = nil
	for _, w := range ws {
		s.wake(w, e)
	}
	for _, m := range e.methods {
		s.makeRunnable(m)
	}
}

// wake completes a pending wait; by is nil when the timeout elapsed.
func (s *Simulator) wake(w *waiter, by *Event) {
	if w.done {
		return
	}
	w.done = true
	w.woke = by
	for _, e := range w.events {
		if e != by {
			e.removeWaiter(w)
		}
	}
	w.proc.waiting = nil
	s.makeRunnable(w.proc)
}

func (s *Simulator) makeRunnable(p *Process) {
	switch p.state {
	case stateReady, stateRunning, stateTerminated:
		return
	}
	p.state = stateReady
	s.runnable = append(s.runnable, p)
}

func (s *Simulator) execute(p *Process) error {
	p.state = stateRunning
	s.current = p
	defer func() { s.current = nil }()
	s.metrics.Activations.WithLabelValues(string(p.kind)).Inc()

	if p.kind == KindMethod {
		return s.runMethod(p)
	}
	return s.resumeThread(p)
}

func (s *Simulator) runMethod(p *Process) (err error) {
	defer func() {
		p.state = stateIdle
		if r := recover(); r != nil {
			err = newProcessFault(p, s.now, r)
		}
	}()
	p.method()
	return nil
}

func (s *Simulator) resumeThread(p *Process) error {
	if !p.started {
		p.started = true
		p.resume = make(chan resumeCmd)
		go p.body()
	}
	p.resume <- resumeRun
	msg := <-s.yield
	switch msg.kind {
	case yieldSuspended:
		return nil
	case yieldFinished:
		p.state = stateTerminated
		s.log.Debugf("[t=%s] thread %q returned", s.Format(s.now), p.name)
		return nil
	case yieldFault:
		p.state = stateTerminated
		return msg.fault
	default:
		p.state = stateTerminated
		return nil
	}
}

// blocked lists threads parked on a wait.
func (s *Simulator) blocked() []string {
	var names []string
	for _, p := range s.processes {
		if p.kind == KindThread && p.state == stateWaiting {
			names = append(names, p.name)
		}
	}
	return names
}

// Shutdown terminates the goroutines of all parked threads. The simulator
// cannot be run afterwards. It must not be called from a process body.
func (s *Simulator) Shutdown() error {
	if s.running {
		return ErrRunning
	}
	if s.shutdown {
		return nil
	}
	s.shutdown = true
	s.killThreads()
	return nil
}

func (s *Simulator) killThreads() {
	for _, p := range s.processes {
		if p.kind != KindThread || !p.started || p.state == stateTerminated {
			continue
		}
		p.resume <- resumeKill
		<-s.yield
		p.state = stateTerminated
	}
}
