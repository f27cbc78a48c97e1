package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/internal/testutil"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// TestScenarios_GoldenDataset runs every golden case and compares the exact
// outcome. Any kernel change that shifts event ordering shows up here.
func TestScenarios_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Tests)

	for _, tc := range dataset.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			in, res := run(t, &Spec{Kind: tc.Kind, Seed: tc.Seed, Horizon: tc.Horizon})

			want := tc.Metrics
			assert.Equal(t, sim.StopReason(want.Reason), res.Reason)
			assert.Equal(t, sim.Time(want.EndTime), res.Now)

			summary := trace.Summarize(in.Trace)
			assert.Equal(t, want.Violations, summary.TotalViolations)
			for reason, n := range want.ViolationsByReason {
				assert.Equal(t, n, summary.ViolationsByReason[reason], "reason %q", reason)
			}

			got := make(map[string]string)
			for _, f := range in.Facts() {
				got[f.Name] = f.Value
			}
			testutil.AssertFacts(t, tc.Name, want.Facts, got)
		})
	}
}
