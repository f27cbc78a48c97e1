package sim

// Trigger is anything a process can be sensitive to or wait on.
// Events trigger themselves; signals and channels trigger on their default event.
type Trigger interface {
	DefaultEvent() *Event
}

// Event is an identity-only notification primitive.
//
// Firing an Event wakes every waiter registered at the moment of firing,
// exactly once, and clears the waiter set. Waiters registered later only
// observe later firings. Methods statically sensitive to the event are
// re-triggered on every firing.
type Event struct {
	sim  *Simulator
	name string

	generation  uint64 // incremented each time the event fires
	triggeredIn uint64 // stamp of the cycle in which processes observe the last firing

	waiters []*waiter
	methods []*Process

	deltaPending bool
	timedPending bool
	timedAt      Time
	timedSeq     uint64
}

// NewEvent creates an event owned by s.
func NewEvent(s *Simulator, name string) *Event {
	return &Event{sim: s, name: name}
}

// Name returns the event name.
func (e *Event) Name() string { return e.name }

// DefaultEvent implements Trigger.
func (e *Event) DefaultEvent() *Event { return e }

// Generation returns the number of times the event has fired.
func (e *Event) Generation() uint64 { return e.generation }

// Triggered reports whether the event fired in the notification phase that
// immediately precedes the current delta cycle (or immediately within it).
func (e *Event) Triggered() bool {
	return e.generation > 0 && e.triggeredIn == e.sim.stamp
}

// Notify schedules a delta notification: the event fires after the update
// phase of the current delta cycle. A pending delta notification overrides
// any pending timed one.
func (e *Event) Notify() {
	if e.deltaPending {
		return
	}
	e.cancelTimed()
	e.deltaPending = true
	e.sim.deltaEvents = append(e.sim.deltaEvents, e)
}

// NotifyAfter schedules the event to fire d ticks from now. A zero delay is
// a delta notification. If a notification is already pending at or before
// the requested time, the call has no effect.
func (e *Event) NotifyAfter(d Time) {
	if d <= 0 {
		e.Notify()
		return
	}
	if e.deltaPending {
		return
	}
	at := e.sim.now.Add(d)
	if e.timedPending && e.timedAt <= at {
		return
	}
	e.timedSeq++
	e.timedPending = true
	e.timedAt = at
	e.sim.queue.schedule(&timedAction{
		at:       at,
		kind:     actionNotify,
		event:    e,
		eventSeq: e.timedSeq,
	})
}

// NotifyImmediate fires the event now. Waiting processes become runnable
// in the current delta cycle. Any pending notification is cancelled.
func (e *Event) NotifyImmediate() {
	e.Cancel()
	e.sim.fire(e, e.sim.stamp)
}

// notifyOnce fires the event immediately unless it already fired in the
// current delta cycle, in which case the firing moves to the next delta.
// Channels use it so that each transition event fires at most once per delta.
func (e *Event) notifyOnce() {
	if e.Triggered() {
		e.Notify()
		return
	}
	e.NotifyImmediate()
}

// Cancel drops any pending delta or timed notification.
func (e *Event) Cancel() {
	e.deltaPending = false
	e.cancelTimed()
}

func (e *Event) cancelTimed() {
	if e.timedPending {
		e.timedPending = false
		e.timedSeq++
	}
}

func (e *Event) removeWaiter(w *waiter) {
	for i, o := range e.waiters {
		if o == w {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

// waiter is the descriptor of one pending dynamic wait: a disjunction of
// events with an optional timeout.
type waiter struct {
	proc   *Process
	events []*Event
	woke   *Event // nil when the timeout elapsed
	done   bool
}

func eventsOf(triggers []Trigger) []*Event {
	evs := make([]*Event, 0, len(triggers))
	for _, t := range triggers {
		if t == nil {
			continue
		}
		evs = append(evs, t.DefaultEvent())
	}
	return evs
}
