// Tracks kernel-level statistics such as delta cycles, time advances and
// process activations, exposed as Prometheus metrics.

package sim

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics aggregates kernel statistics. It implements prometheus.Collector
// so it can be registered on any registry.
type Metrics struct {
	DeltaCycles   prometheus.Counter
	TimeAdvances  prometheus.Counter
	EventsFired   prometheus.Counter
	SignalCommits prometheus.Counter
	Activations   *prometheus.CounterVec // by process kind
	SimTime       prometheus.Gauge       // current simulated time in ticks
}

// NewMetrics creates the kernel metrics for the named simulator.
func NewMetrics(simName string) *Metrics {
	labels := prometheus.Labels{"simulator": simName}
	return &Metrics{
		DeltaCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "deltasim_delta_cycles_total",
			Help:        "Number of evaluate/update delta cycles executed",
			ConstLabels: labels,
		}),
		TimeAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "deltasim_time_advances_total",
			Help:        "Number of times simulated time moved forward",
			ConstLabels: labels,
		}),
		EventsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "deltasim_events_fired_total",
			Help:        "Number of event firings",
			ConstLabels: labels,
		}),
		SignalCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "deltasim_signal_commits_total",
			Help:        "Number of committed signal value changes",
			ConstLabels: labels,
		}),
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "deltasim_process_activations_total",
			Help:        "Number of process activations by process kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		SimTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "deltasim_sim_time_ticks",
			Help:        "Current simulated time in ticks",
			ConstLabels: labels,
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.DeltaCycles.Describe(ch)
	m.TimeAdvances.Describe(ch)
	m.EventsFired.Describe(ch)
	m.SignalCommits.Describe(ch)
	m.Activations.Describe(ch)
	m.SimTime.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.DeltaCycles.Collect(ch)
	m.TimeAdvances.Collect(ch)
	m.EventsFired.Collect(ch)
	m.SignalCommits.Collect(ch)
	m.Activations.Collect(ch)
	m.SimTime.Collect(ch)
}

// Snapshot is a plain-value copy of the kernel statistics.
type Snapshot struct {
	DeltaCycles       uint64
	TimeAdvances      uint64
	EventsFired       uint64
	SignalCommits     uint64
	MethodActivations uint64
	ThreadActivations uint64
}

// Snapshot reads the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		DeltaCycles:       counterValue(m.DeltaCycles),
		TimeAdvances:      counterValue(m.TimeAdvances),
		EventsFired:       counterValue(m.EventsFired),
		SignalCommits:     counterValue(m.SignalCommits),
		MethodActivations: counterValue(m.Activations.WithLabelValues(string(KindMethod))),
		ThreadActivations: counterValue(m.Activations.WithLabelValues(string(KindThread))),
	}
}

// Print writes the statistics in a human-readable form.
func (m *Metrics) Print(w io.Writer) {
	snap := m.Snapshot()
	fmt.Fprintln(w, "=== Kernel Metrics ===")
	fmt.Fprintf(w, "Delta cycles         : %d\n", snap.DeltaCycles)
	fmt.Fprintf(w, "Time advances        : %d\n", snap.TimeAdvances)
	fmt.Fprintf(w, "Events fired         : %d\n", snap.EventsFired)
	fmt.Fprintf(w, "Signal commits       : %d\n", snap.SignalCommits)
	fmt.Fprintf(w, "Method activations   : %d\n", snap.MethodActivations)
	fmt.Fprintf(w, "Thread activations   : %d\n", snap.ThreadActivations)
}

func counterValue(c prometheus.Counter) uint64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil || pb.Counter == nil {
		return 0
	}
	return uint64(pb.Counter.GetValue())
}
