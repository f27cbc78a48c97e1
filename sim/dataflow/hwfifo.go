package dataflow

import (
	"github.com/pkg/errors"

	"github.com/inference-sim/delta-sim/sim"
)

// HWPorts binds a HWFifo to its handshake signals. The write side is
// DataIn/ValidIn/ReadyOut, the read side DataOut/ValidOut/ReadyIn.
type HWPorts[T comparable] struct {
	DataIn   *sim.Signal[T]
	ValidIn  *sim.BoolSignal
	ReadyOut *sim.BoolSignal

	DataOut  *sim.Signal[T]
	ValidOut *sim.BoolSignal
	ReadyIn  *sim.BoolSignal
}

func (hp HWPorts[T]) bound() bool {
	return hp.DataIn != nil && hp.ValidIn != nil && hp.ReadyOut != nil &&
		hp.DataOut != nil && hp.ValidOut != nil && hp.ReadyIn != nil
}

// HWFifo is a clocked register-transfer FIFO with ready/valid handshakes on
// both sides. On each clock edge it accepts one value if the writer is valid
// and it is ready, releases one value if the reader is ready and it is
// valid, then drives its outputs from the new occupancy.
type HWFifo[T comparable] struct {
	ports HWPorts[T]
	data  []T
	first int
	items int
}

// NewHWFifo creates a FIFO of the given size clocked by edge.
func NewHWFifo[T comparable](s *sim.Simulator, name string, size int, edge sim.Trigger, ports HWPorts[T]) (*HWFifo[T], error) {
	if size <= 0 {
		return nil, errors.Wrapf(sim.ErrInvalidConfig, "hw fifo %q: size must be positive, got %d", name, size)
	}
	if edge == nil || !ports.bound() {
		return nil, unbound("hw fifo", name)
	}
	f := &HWFifo[T]{ports: ports, data: make([]T, size)}
	if _, err := s.Method(name, f.clock, sim.Sensitive(edge)); err != nil {
		return nil, err
	}
	return f, nil
}

// Items returns the current occupancy.
func (f *HWFifo[T]) Items() int { return f.items }

func (f *HWFifo[T]) clock() {
	hp := f.ports
	if hp.ValidIn.Read() && hp.ReadyOut.Read() {
		f.data[(f.first+f.items)%len(f.data)] = hp.DataIn.Read()
		f.items++
	}
	if hp.ReadyIn.Read() && hp.ValidOut.Read() {
		f.items--
		f.first = (f.first + 1) % len(f.data)
	}
	hp.ReadyOut.Write(f.items < len(f.data))
	hp.ValidOut.Write(f.items > 0)
	hp.DataOut.Write(f.data[f.first])
}

// HandshakeWriter adapts the blocking Writer interface to a clocked
// ready/valid handshake: it drives data and valid, then waits for clock
// edges until ready is seen.
type HandshakeWriter[T comparable] struct {
	clk   *sim.Clock
	data  *sim.Signal[T]
	valid *sim.BoolSignal
	ready *sim.BoolSignal
}

// NewHandshakeWriter binds the write side of a handshake.
func NewHandshakeWriter[T comparable](clk *sim.Clock, data *sim.Signal[T], valid, ready *sim.BoolSignal) (*HandshakeWriter[T], error) {
	if clk == nil || data == nil || valid == nil || ready == nil {
		return nil, errors.Wrap(sim.ErrInvalidConfig, "handshake writer: port not bound")
	}
	return &HandshakeWriter[T]{clk: clk, data: data, valid: valid, ready: ready}, nil
}

// Write offers v and returns after the first edge at which ready is high.
func (w *HandshakeWriter[T]) Write(p *sim.Process, v T) {
	w.data.Write(v)
	w.valid.Write(true)
	for {
		p.Wait(w.clk.Posedge())
		if w.ready.Read() {
			break
		}
	}
	w.valid.Write(false)
}

// HandshakeReader adapts the blocking Reader interface to a clocked
// ready/valid handshake: it raises ready, then waits for clock edges until
// valid is seen.
type HandshakeReader[T comparable] struct {
	clk   *sim.Clock
	data  *sim.Signal[T]
	valid *sim.BoolSignal
	ready *sim.BoolSignal
}

// NewHandshakeReader binds the read side of a handshake.
func NewHandshakeReader[T comparable](clk *sim.Clock, data *sim.Signal[T], valid, ready *sim.BoolSignal) (*HandshakeReader[T], error) {
	if clk == nil || data == nil || valid == nil || ready == nil {
		return nil, errors.Wrap(sim.ErrInvalidConfig, "handshake reader: port not bound")
	}
	return &HandshakeReader[T]{clk: clk, data: data, valid: valid, ready: ready}, nil
}

// Read signals readiness and returns the data present at the first edge
// at which valid is high.
func (r *HandshakeReader[T]) Read(p *sim.Process) T {
	r.ready.Write(true)
	for {
		p.Wait(r.clk.Posedge())
		if r.valid.Read() {
			break
		}
	}
	r.ready.Write(false)
	return r.data.Read()
}

// HWChannel wraps a HWFifo between a handshake writer and reader so it can
// stand in for a FIFO channel. At most one value moves per edge on each side.
type HWChannel[T comparable] struct {
	name string
	fifo *HWFifo[T]
	*HandshakeWriter[T]
	*HandshakeReader[T]
}

// NewHWChannel creates the embedded signals and FIFO, clocked by clk.
func NewHWChannel[T comparable](s *sim.Simulator, name string, size int, clk *sim.Clock) (*HWChannel[T], error) {
	if clk == nil {
		return nil, unbound("hw channel", name)
	}
	var zero T
	ports := HWPorts[T]{
		DataIn:   sim.NewSignal(s, name+".write_data", zero),
		ValidIn:  sim.NewBoolSignal(s, name+".write_valid", false),
		ReadyOut: sim.NewBoolSignal(s, name+".write_ready", true),
		DataOut:  sim.NewSignal(s, name+".read_data", zero),
		ValidOut: sim.NewBoolSignal(s, name+".read_valid", false),
		ReadyIn:  sim.NewBoolSignal(s, name+".read_ready", false),
	}
	fifo, err := NewHWFifo(s, name+".hw_fifo", size, clk.Posedge(), ports)
	if err != nil {
		return nil, err
	}
	w, err := NewHandshakeWriter(clk, ports.DataIn, ports.ValidIn, ports.ReadyOut)
	if err != nil {
		return nil, err
	}
	r, err := NewHandshakeReader(clk, ports.DataOut, ports.ValidOut, ports.ReadyIn)
	if err != nil {
		return nil, err
	}
	return &HWChannel[T]{name: name, fifo: fifo, HandshakeWriter: w, HandshakeReader: r}, nil
}

// Name returns the channel name.
func (c *HWChannel[T]) Name() string { return c.name }

// FIFO returns the embedded hardware FIFO.
func (c *HWChannel[T]) FIFO() *HWFifo[T] { return c.fifo }
