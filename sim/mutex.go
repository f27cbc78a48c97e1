package sim

import "github.com/pkg/errors"

// Mutex serializes access to a shared resource among threads. A thread that
// locks a held mutex is suspended until the owner unlocks it. There is no
// arbitration among competing lockers beyond wake order. Like the FIFO
// events, the release event fires at most once per delta cycle.
type Mutex struct {
	name  string
	owner *Process
	free  *Event
}

// NewMutex creates an unlocked mutex.
func NewMutex(s *Simulator, name string) *Mutex {
	return &Mutex{name: name, free: NewEvent(s, name+".free")}
}

// Lock acquires the mutex for p, suspending p while another process holds it.
func (m *Mutex) Lock(p *Process) {
	for m.owner != nil {
		p.Wait(m.free)
	}
	m.owner = p
}

// TryLock acquires the mutex if it is free.
func (m *Mutex) TryLock(p *Process) bool {
	if m.owner != nil {
		return false
	}
	m.owner = p
	return true
}

// Unlock releases the mutex. Only the owner may unlock it.
func (m *Mutex) Unlock(p *Process) error {
	if m.owner != p {
		return errors.Wrapf(ErrNotOwner, "unlock %q by %q", m.name, p.Name())
	}
	m.owner = nil
	m.free.notifyOnce()
	return nil
}

// Owner returns the process holding the mutex, or nil.
func (m *Mutex) Owner() *Process { return m.owner }
