package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalChanges       int
	TotalWrites        int
	TotalViolations    int
	TotalGrants        int
	ViolationsByReason map[string]int
	GrantDistribution  map[int]int    // granted index → count
	ChangesBySignal    map[string]int // signal name → committed changes
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ViolationsByReason: make(map[string]int),
		GrantDistribution:  make(map[int]int),
		ChangesBySignal:    make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalChanges = len(st.Changes)
	for _, c := range st.Changes {
		summary.ChangesBySignal[c.Signal]++
	}

	summary.TotalWrites = len(st.Writes)

	summary.TotalViolations = len(st.Violations)
	for _, v := range st.Violations {
		summary.ViolationsByReason[v.Reason]++
	}

	summary.TotalGrants = len(st.Grants)
	for _, g := range st.Grants {
		summary.GrantDistribution[g.Index]++
	}

	return summary
}
