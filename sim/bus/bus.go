// Package bus models a very simple shared bus in front of a byte memory.
// Masters are serialized with a kernel Mutex without arbitration rules, and
// each burst blocks its caller for length times the cycle time.
package bus

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/delta-sim/sim"
)

// ErrOutOfRange is returned for bursts that do not fit in the memory.
var ErrOutOfRange = errors.New("burst outside bus memory")

// Interface is what bus masters see.
type Interface interface {
	BurstRead(p *sim.Process, data []byte, addr int) error
	BurstWrite(p *sim.Process, data []byte, addr int) error
}

// Kind distinguishes read from write transactions.
type Kind string

const (
	KindRead  Kind = "read"
	KindWrite Kind = "write"
)

// Transaction records one completed burst.
type Transaction struct {
	Master string
	Kind   Kind
	Addr   int
	Length int
	Start  sim.Time // when the bus was acquired
	End    sim.Time
}

// SimpleBus is a memory-backed bus channel.
type SimpleBus struct {
	name  string
	sim   *sim.Simulator
	mem   []byte
	cycle sim.Time
	mu    *sim.Mutex
	txns  []Transaction
	log   *logrus.Entry
}

var _ Interface = (*SimpleBus)(nil)

// New creates a bus over memSize zeroed bytes.
func New(s *sim.Simulator, name string, memSize int, cycle sim.Time) (*SimpleBus, error) {
	if memSize <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "bus %q: memory size must be positive, got %d", name, memSize)
	}
	if cycle <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "bus %q: cycle time must be positive, got %d", name, cycle)
	}
	return &SimpleBus{
		name:  name,
		sim:   s,
		mem:   make([]byte, memSize),
		cycle: cycle,
		mu:    sim.NewMutex(s, name+".mutex"),
		log:   s.Logger().WithField("bus", name),
	}, nil
}

// BurstRead copies len(data) bytes starting at addr into data.
func (b *SimpleBus) BurstRead(p *sim.Process, data []byte, addr int) error {
	return b.burst(p, KindRead, data, addr)
}

// BurstWrite copies data into memory starting at addr.
func (b *SimpleBus) BurstWrite(p *sim.Process, data []byte, addr int) error {
	return b.burst(p, KindWrite, data, addr)
}

func (b *SimpleBus) burst(p *sim.Process, kind Kind, data []byte, addr int) error {
	if addr < 0 || addr+len(data) > len(b.mem) {
		return errors.Wrapf(ErrOutOfRange, "%s of %d bytes at %d, memory size %d", kind, len(data), addr, len(b.mem))
	}

	b.mu.Lock(p)
	start := b.sim.Now()
	b.log.Debugf("[t=%s] %s by %s starts", b.sim.Format(start), kind, p.Name())

	if n := sim.Time(len(data)); n > 0 {
		p.WaitFor(n * b.cycle)
	}
	if kind == KindRead {
		copy(data, b.mem[addr:])
	} else {
		copy(b.mem[addr:], data)
	}

	end := b.sim.Now()
	b.log.Debugf("[t=%s] %s by %s ends", b.sim.Format(end), kind, p.Name())
	b.txns = append(b.txns, Transaction{
		Master: p.Name(),
		Kind:   kind,
		Addr:   addr,
		Length: len(data),
		Start:  start,
		End:    end,
	})
	return b.mu.Unlock(p)
}

// Name returns the bus name.
func (b *SimpleBus) Name() string { return b.name }

// Transactions returns the completed bursts in completion order.
func (b *SimpleBus) Transactions() []Transaction { return b.txns }

// Peek returns the memory byte at addr without simulating a bus access.
func (b *SimpleBus) Peek(addr int) byte { return b.mem[addr] }
