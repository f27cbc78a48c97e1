package trace

// TraceLevel controls the verbosity of recording.
type TraceLevel string

const (
	// TraceLevelNone disables recording of value streams; violations are still kept.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions adds arbitration grants.
	TraceLevelDecisions TraceLevel = "decisions"
	// TraceLevelValues adds every committed signal change and FIFO write.
	TraceLevelValues TraceLevel = "values"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	TraceLevelValues:    true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	RunID string
}

// SimulationTrace collects records during a simulation run.
type SimulationTrace struct {
	Config     TraceConfig
	Changes    []ChangeRecord
	Writes     []WriteRecord
	Violations []ViolationRecord
	Grants     []GrantRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Changes:    make([]ChangeRecord, 0),
		Writes:     make([]WriteRecord, 0),
		Violations: make([]ViolationRecord, 0),
		Grants:     make([]GrantRecord, 0),
	}
}

// RecordsValues reports whether signal changes and FIFO writes are kept.
func (st *SimulationTrace) RecordsValues() bool {
	return st.Config.Level == TraceLevelValues
}

// RecordsDecisions reports whether arbitration grants are kept.
func (st *SimulationTrace) RecordsDecisions() bool {
	return st.Config.Level == TraceLevelDecisions || st.Config.Level == TraceLevelValues
}

// RecordChange appends a signal change record.
func (st *SimulationTrace) RecordChange(record ChangeRecord) {
	st.Changes = append(st.Changes, record)
}

// RecordWrite appends a FIFO write record.
func (st *SimulationTrace) RecordWrite(record WriteRecord) {
	st.Writes = append(st.Writes, record)
}

// RecordViolation appends a checker violation record.
func (st *SimulationTrace) RecordViolation(record ViolationRecord) {
	st.Violations = append(st.Violations, record)
}

// RecordGrant appends an arbitration record if decisions are traced.
func (st *SimulationTrace) RecordGrant(record GrantRecord) {
	if !st.RecordsDecisions() {
		return
	}
	st.Grants = append(st.Grants, record)
}

// ChangesOf returns the recorded changes of one signal, in order.
func (st *SimulationTrace) ChangesOf(signal string) []ChangeRecord {
	var out []ChangeRecord
	for _, c := range st.Changes {
		if c.Signal == signal {
			out = append(out, c)
		}
	}
	return out
}
