package sim

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfig is returned by constructors when a component is
	// configured in a way that can never simulate correctly.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrElaborated is returned when processes are created after the first Run.
	ErrElaborated = errors.New("simulator already elaborated")

	// ErrRunning is returned when Run is called re-entrantly.
	ErrRunning = errors.New("simulator is running")

	// ErrShutdown is returned by Run after Shutdown.
	ErrShutdown = errors.New("simulator has been shut down")

	// ErrNotOwner is returned when a mutex is unlocked by a process that does not hold it.
	ErrNotOwner = errors.New("mutex not owned by process")
)

func invalidConfig(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

// ProcessFault reports a panic raised inside a process body.
// A fault terminates the whole run.
type ProcessFault struct {
	Process string
	Time    Time
	Value   any
	err     error
}

func newProcessFault(p *Process, at Time, v any) *ProcessFault {
	err, ok := v.(error)
	if !ok {
		err = errors.Errorf("%v", v)
	}
	return &ProcessFault{
		Process: p.name,
		Time:    at,
		Value:   v,
		err:     errors.WithStack(err),
	}
}

func (f *ProcessFault) Error() string {
	return fmt.Sprintf("process %q faulted at t=%d: %v", f.Process, f.Time, f.Value)
}

// Unwrap exposes the panic value when it was an error.
func (f *ProcessFault) Unwrap() error {
	return f.err
}

// StackTrace returns the stack captured when the fault was recovered.
func (f *ProcessFault) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := f.err.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}
