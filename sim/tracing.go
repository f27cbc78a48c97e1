package sim

import (
	"fmt"

	"github.com/inference-sim/delta-sim/sim/trace"
)

// TraceSignal records every committed value of sg into st when the trace
// level includes value streams. Recording is a pure observer.
func TraceSignal[T comparable](st *trace.SimulationTrace, sg *Signal[T]) {
	if st == nil || !st.RecordsValues() {
		return
	}
	sg.Observe(func(at Time, v T) {
		st.RecordChange(trace.ChangeRecord{Signal: sg.Name(), Clock: int64(at), Value: fmt.Sprint(v)})
	})
}

// TraceFIFO records every successful write to f into st when the trace
// level includes value streams.
func TraceFIFO[T any](st *trace.SimulationTrace, f *FIFO[T]) {
	if st == nil || !st.RecordsValues() {
		return
	}
	f.Observe(func(at Time, v T) {
		st.RecordWrite(trace.WriteRecord{FIFO: f.Name(), Clock: int64(at), Value: fmt.Sprint(v)})
	})
}
