// Package trace provides recording of simulation activity: committed signal
// values, FIFO writes, checker violations and arbitration grants.
// This package has no dependencies on sim/ or its sub-packages; it stores pure data types.
package trace

// ChangeRecord captures one committed signal value change.
type ChangeRecord struct {
	Signal string
	Clock  int64
	Value  string
}

// WriteRecord captures one successful FIFO write.
type WriteRecord struct {
	FIFO  string
	Clock int64
	Value string
}

// ViolationRecord captures a protocol violation detected by a checker.
// Violations are non-fatal; the run continues after they are recorded.
type ViolationRecord struct {
	Checker string
	Clock   int64
	Reason  string
}

// GrantRecord captures a single arbitration decision.
type GrantRecord struct {
	Arbiter string
	Clock   int64
	Index   int // granted input/output pair
	Scanned int // candidates examined before the grant
}
