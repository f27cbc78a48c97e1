package cmd

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/delta-sim/sim/scenario"
)

var (
	// CLI flags for scenario selection
	scenarioKind string // Built-in scenario kind
	configPath   string // YAML scenario file, overrides scenarioKind

	// CLI flags for run control
	seed         int64  // Master seed for the partitioned RNG
	horizon      string // Simulation horizon such as "500ns" or "2.5us", or "forever"
	logLevel     string // Log verbosity level
	traceLevel   string // Trace level: none, decisions, values
	printMetrics bool   // Print kernel metrics after the run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "delta-sim",
	Short: "Delta-cycle discrete-event simulator for hardware-style models",
}

// runCmd builds a scenario from flags or a YAML file and runs it
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		spec, err := loadSpec(configPath, scenarioKind)
		if err != nil {
			logrus.Fatalf("Unable to read scenario: %v", err)
		}
		applyOverrides(spec, cmd.Flags().Changed)
		if err := spec.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		in, err := scenario.Build(spec, prometheus.NewRegistry())
		if err != nil {
			logrus.Fatalf("Unable to build scenario: %v", err)
		}

		startTime := time.Now()
		res, runErr := in.Run()
		printSummary(in, res, time.Since(startTime))
		writeViolations(os.Stdout, in)
		if printMetrics {
			in.Sim.Metrics().Print(os.Stdout)
		}
		if err := in.Close(); err != nil {
			logrus.Warnf("Shutdown: %v", err)
		}
		if runErr != nil {
			logrus.Fatalf("Simulation failed: %v", runErr)
		}

		logrus.Info("Simulation complete.")
	},
}

// scenariosCmd lists the built-in scenarios
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		writeCatalog(os.Stdout)
	},
}

// loadSpec reads path when set, otherwise starts from the built-in kind.
func loadSpec(path, kind string) (*scenario.Spec, error) {
	if path == "" {
		return &scenario.Spec{Kind: kind}, nil
	}
	return scenario.Load(path)
}

// applyOverrides copies explicitly set CLI flags over the scenario file.
func applyOverrides(spec *scenario.Spec, changed func(name string) bool) {
	if changed("scenario") || spec.Kind == "" {
		spec.Kind = scenarioKind
	}
	if changed("seed") {
		spec.Seed = seed
	}
	if changed("horizon") {
		spec.Horizon = horizon
	}
	if changed("trace") {
		spec.Trace = traceLevel
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioKind, "scenario", "dataflow", "Built-in scenario kind (see `delta-sim scenarios`)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML scenario file")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random processes")
	runCmd.Flags().StringVar(&horizon, "horizon", "", "Simulation horizon (e.g. 500ns, 100ps, or \"forever\"); default depends on the scenario")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "", "Trace level (none, decisions, values)")
	runCmd.Flags().BoolVar(&printMetrics, "metrics", false, "Print kernel metrics after the run")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
}
