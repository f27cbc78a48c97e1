// Package sim provides the delta-cycle discrete-event simulation kernel.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: Event notification rules (delta, timed, immediate, cancel)
//   - process.go: Method and thread processes, sensitivity and waits
//   - simulator.go: The evaluate/update delta loop, time advance and run ending
//
// # Architecture
//
// The sim package holds the kernel and its primitive channels; components
// built on them live in sub-packages:
//   - sim/trace/: Pure-data recording of signal values, FIFO writes, violations and grants
//   - sim/check/: Read-only protocol checkers (glitch, min/max delay)
//   - sim/xbar/: Round-robin crossbar arbiter
//   - sim/dataflow/: Dataflow nodes, waveform generator, timing-pattern converter, hardware FIFO
//   - sim/bus/: Mutex-serialized memory bus
//   - sim/scenario/: YAML scenario files and the built-in scenario catalog
//
// # Key Types
//
// The primitives processes communicate through:
//   - Event: identity-only notification; waking waiters is the only effect of firing
//   - Signal: value with deferred commit at the end of the delta; BoolSignal adds edges
//   - FIFO: bounded channel with blocking and non-blocking access
//   - Mutex: exclusive ownership among threads
//   - Clock: periodic BoolSignal driven by its own thread
//
// Every process body runs one at a time under the scheduler's control, so
// none of these types need locking.
package sim
