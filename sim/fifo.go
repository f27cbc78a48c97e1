package sim

// Reader is the blocking read side of a channel.
type Reader[T any] interface {
	Read(p *Process) T
}

// Writer is the blocking write side of a channel.
type Writer[T any] interface {
	Write(p *Process, v T)
}

// FIFOReader is the full read interface of a FIFO channel.
type FIFOReader[T any] interface {
	Reader[T]
	TryRead() (T, bool)
	Available() int
	DataAvailable() *Event
}

// FIFOWriter is the full write interface of a FIFO channel.
type FIFOWriter[T any] interface {
	Writer[T]
	TryWrite(v T) bool
	FreeCapacity() int
	SpaceAvailable() *Event
}

// FIFO is a bounded-capacity first-in first-out channel.
//
// Blocking operations suspend the calling thread while the FIFO is full
// (Write) or empty (Read). A write that makes the FIFO non-empty fires
// DataAvailable, a read that makes it non-full fires SpaceAvailable. Each
// event fires at most once per delta cycle: the first transition in a delta
// wakes blocked peers within that delta, later ones wake them in the next.
type FIFO[T any] struct {
	sim   *Simulator
	name  string
	buf   []T
	first int
	count int

	dataAvailable  *Event
	spaceAvailable *Event
	observers      []func(at Time, v T)
}

// NewFIFO creates a FIFO holding at most capacity values.
func NewFIFO[T any](s *Simulator, name string, capacity int) (*FIFO[T], error) {
	if capacity <= 0 {
		return nil, invalidConfig("fifo %q: capacity must be positive, got %d", name, capacity)
	}
	return &FIFO[T]{
		sim:            s,
		name:           name,
		buf:            make([]T, capacity),
		dataAvailable:  NewEvent(s, name+".data_available"),
		spaceAvailable: NewEvent(s, name+".space_available"),
	}, nil
}

// Name returns the FIFO name.
func (f *FIFO[T]) Name() string { return f.name }

// Cap returns the capacity.
func (f *FIFO[T]) Cap() int { return len(f.buf) }

// Available returns the number of values ready to be read.
func (f *FIFO[T]) Available() int { return f.count }

// FreeCapacity returns the number of values that can be written without blocking.
func (f *FIFO[T]) FreeCapacity() int { return len(f.buf) - f.count }

// DataAvailable returns the event fired when the FIFO becomes non-empty.
func (f *FIFO[T]) DataAvailable() *Event { return f.dataAvailable }

// SpaceAvailable returns the event fired when the FIFO becomes non-full.
func (f *FIFO[T]) SpaceAvailable() *Event { return f.spaceAvailable }

// DefaultEvent implements Trigger; processes sensitive to a FIFO wake when data arrives.
func (f *FIFO[T]) DefaultEvent() *Event { return f.dataAvailable }

// Observe registers a read-only observer of every successful write.
func (f *FIFO[T]) Observe(fn func(at Time, v T)) {
	f.observers = append(f.observers, fn)
}

// Write enqueues v, suspending p while the FIFO is full.
func (f *FIFO[T]) Write(p *Process, v T) {
	for f.count == len(f.buf) {
		p.Wait(f.spaceAvailable)
	}
	f.push(v)
}

// TryWrite enqueues v unless the FIFO is full.
func (f *FIFO[T]) TryWrite(v T) bool {
	if f.count == len(f.buf) {
		return false
	}
	f.push(v)
	return true
}

// Read dequeues the oldest value, suspending p while the FIFO is empty.
func (f *FIFO[T]) Read(p *Process) T {
	for f.count == 0 {
		p.Wait(f.dataAvailable)
	}
	return f.pop()
}

// TryRead dequeues the oldest value unless the FIFO is empty.
func (f *FIFO[T]) TryRead() (T, bool) {
	if f.count == 0 {
		var zero T
		return zero, false
	}
	return f.pop(), true
}

func (f *FIFO[T]) push(v T) {
	f.buf[(f.first+f.count)%len(f.buf)] = v
	f.count++
	for _, fn := range f.observers {
		fn(f.sim.now, v)
	}
	if f.count == 1 {
		f.dataAvailable.notifyOnce()
	}
}

func (f *FIFO[T]) pop() T {
	var zero T
	v := f.buf[f.first]
	f.buf[f.first] = zero
	f.first = (f.first + 1) % len(f.buf)
	f.count--
	if f.count == len(f.buf)-1 {
		f.spaceAvailable.notifyOnce()
	}
	return v
}
