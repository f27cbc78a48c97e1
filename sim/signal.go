package sim

// updater is implemented by primitives with deferred (delta-cycle) updates.
type updater interface {
	update()
}

// Signal is a typed shared cell with delta-cycle update semantics.
//
// Writes are buffered and become visible at the next update phase. The
// value-changed event fires once per update phase in which the committed
// value differs from the previous one. Multiple writes in one delta cycle
// overwrite each other: the last write wins, whichever process issued it.
// Designs with several drivers must serialize them (see Mutex).
type Signal[T comparable] struct {
	sim  *Simulator
	name string

	cur     T
	next    T
	pending bool

	changed *Event
	commits []func(old, new T)
}

// NewSignal creates a signal holding init.
func NewSignal[T comparable](s *Simulator, name string, init T) *Signal[T] {
	return &Signal[T]{
		sim:     s,
		name:    name,
		cur:     init,
		changed: NewEvent(s, name+".value_changed"),
	}
}

// Name returns the signal name.
func (sg *Signal[T]) Name() string { return sg.name }

// Read returns the current committed value. It never suspends.
func (sg *Signal[T]) Read() T { return sg.cur }

// Write buffers v; it becomes visible after the next update phase.
func (sg *Signal[T]) Write(v T) {
	sg.next = v
	if !sg.pending {
		sg.pending = true
		sg.sim.requestUpdate(sg)
	}
}

// Changed returns the value-changed event. The handle is stable.
func (sg *Signal[T]) Changed() *Event { return sg.changed }

// DefaultEvent implements Trigger.
func (sg *Signal[T]) DefaultEvent() *Event { return sg.changed }

// Event reports whether the value changed in the update phase that
// immediately precedes the current delta cycle.
func (sg *Signal[T]) Event() bool { return sg.changed.Triggered() }

// Observe registers a read-only observer called with every committed value
// change. Observers must not write signals or notify events.
func (sg *Signal[T]) Observe(fn func(at Time, v T)) {
	sg.onCommit(func(_, v T) { fn(sg.sim.now, v) })
}

func (sg *Signal[T]) onCommit(fn func(old, new T)) {
	sg.commits = append(sg.commits, fn)
}

func (sg *Signal[T]) update() {
	sg.pending = false
	if sg.next == sg.cur {
		return
	}
	old := sg.cur
	sg.cur = sg.next
	sg.sim.metrics.SignalCommits.Inc()
	sg.changed.Notify()
	for _, fn := range sg.commits {
		fn(old, sg.cur)
	}
}

// BoolSignal is a Boolean signal with edge events.
type BoolSignal struct {
	*Signal[bool]
	posedge *Event
	negedge *Event
}

// NewBoolSignal creates a Boolean signal holding init.
func NewBoolSignal(s *Simulator, name string, init bool) *BoolSignal {
	b := &BoolSignal{
		Signal:  NewSignal(s, name, init),
		posedge: NewEvent(s, name+".posedge"),
		negedge: NewEvent(s, name+".negedge"),
	}
	b.onCommit(func(_, v bool) {
		if v {
			b.posedge.Notify()
		} else {
			b.negedge.Notify()
		}
	})
	return b
}

// Posedge returns the event fired when the signal goes from false to true.
func (b *BoolSignal) Posedge() *Event { return b.posedge }

// Negedge returns the event fired when the signal goes from true to false.
func (b *BoolSignal) Negedge() *Event { return b.negedge }
