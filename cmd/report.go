package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/scenario"
	"github.com/inference-sim/delta-sim/sim/trace"
)

// printSummary prints the run header and outcome to the console.
func printSummary(in *scenario.Instance, res sim.RunResult, wall time.Duration) {
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold)).
		Println("SCENARIO: " + in.Sim.Name())

	fmt.Println()

	pterm.Info.Printfln("Run ID: %s", in.Sim.ID())
	pterm.Info.Printfln("Ended: %s at t=%s after %d delta cycles", res.Reason, in.Sim.Format(res.Now), res.Deltas)
	pterm.Info.Printfln("Wall time: %s", wall.Round(time.Microsecond))
	if len(res.Blocked) > 0 {
		pterm.Warning.Printfln("Blocked threads: %s", strings.Join(res.Blocked, ", "))
	}
	fmt.Println()

	facts := in.Facts()
	if len(facts) == 0 {
		return
	}
	data := pterm.TableData{{"Outcome", "Value"}}
	for _, f := range facts {
		data = append(data, []string{f.Name, f.Value})
	}
	pterm.DefaultSection.Println("Outcome")
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
	fmt.Println()
}

// writeViolations renders the recorded protocol violations as a table,
// followed by a per-reason count.
func writeViolations(w io.Writer, in *scenario.Instance) {
	vs := in.Trace.Violations
	if len(vs) == 0 {
		fmt.Fprintln(w, "No protocol violations.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Append([]string{"Time", "Checker", "Reason"})
	for _, v := range vs {
		table.Append([]string{in.Sim.Format(sim.Time(v.Clock)), v.Checker, v.Reason})
	}
	table.Render()

	summary := trace.Summarize(in.Trace)
	reasons := make([]string, 0, len(summary.ViolationsByReason))
	for r := range summary.ViolationsByReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	fmt.Fprintf(w, "%d violations\n", summary.TotalViolations)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %-32s %d\n", r, summary.ViolationsByReason[r])
	}
}

// writeCatalog renders the built-in scenarios as a table.
func writeCatalog(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.Append([]string{"Scenario", "Default horizon", "Description"})
	for _, e := range scenario.Catalog() {
		table.Append([]string{e.Kind, e.DefaultHorizon, e.Description})
	}
	table.Render()
}
