package scenario

import (
	"fmt"

	"github.com/inference-sim/delta-sim/sim"
	"github.com/inference-sim/delta-sim/sim/bus"
	"github.com/inference-sim/delta-sim/sim/check"
	"github.com/inference-sim/delta-sim/sim/dataflow"
	"github.com/inference-sim/delta-sim/sim/trace"
	"github.com/inference-sim/delta-sim/sim/xbar"
)

const defaultMessage = "Visit www.systemc.org and see what SystemC can do for you today!\n"

// builder carries the elaboration context. The first error from a channel
// constructor sticks; builders check it before wiring components.
type builder struct {
	s   *sim.Simulator
	st  *trace.SimulationTrace
	p   Params
	err error
}

func (b *builder) keep(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

func newFIFO[T any](b *builder, name string, capacity int) *sim.FIFO[T] {
	f, err := sim.NewFIFO[T](b.s, name, capacity)
	b.keep(err)
	if f != nil {
		sim.TraceFIFO(b.st, f)
	}
	return f
}

func (b *builder) boolSignal(name string) *sim.BoolSignal {
	sg := sim.NewBoolSignal(b.s, name, false)
	sim.TraceSignal(b.st, sg.Signal)
	return sg
}

func (b *builder) clock(name string, period sim.Time) *sim.Clock {
	c, err := sim.NewClock(b.s, name, period)
	b.keep(err)
	return c
}

// feedbackLoop wires const -> adder -> fork -> (feedback, printer) with the
// feedback FIFO seeded with 42.
func feedbackLoop(b *builder, suffix string, n int, cfg dataflow.PrinterConfig) (*dataflow.Printer[int], error) {
	constOut := newFIFO[int](b, "const_out"+suffix, 5)
	adderOut := newFIFO[int](b, "adder_out"+suffix, 1)
	feedback := newFIFO[int](b, "feedback"+suffix, 1)
	toPrinter := newFIFO[int](b, "to_printer"+suffix, 1)
	if b.err != nil {
		return nil, b.err
	}
	feedback.TryWrite(42)

	if _, err := dataflow.NewConst[int](b.s, "constant"+suffix, 1, constOut); err != nil {
		return nil, err
	}
	if _, err := dataflow.NewAdder[int](b.s, "adder"+suffix, constOut, feedback, adderOut); err != nil {
		return nil, err
	}
	if _, err := dataflow.NewFork[int](b.s, "fork"+suffix, adderOut, feedback, toPrinter); err != nil {
		return nil, err
	}
	return dataflow.NewPrinter[int](b.s, "printer"+suffix, n, toPrinter, cfg)
}

func buildDataflow(b *builder) (func() []Fact, error) {
	pr, err := feedbackLoop(b, "", intOr(b.p.Iterations, 10), dataflow.PrinterConfig{})
	if err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{{"printed", fmt.Sprint(pr.Values())}}
	}, nil
}

func buildTerminator(b *builder) (func() []Fact, error) {
	n := intOr(b.p.Iterations, 10)
	done1 := b.boolSignal("done")
	done2 := b.boolSignal("done2")
	p1, err := feedbackLoop(b, "", 2*n, dataflow.PrinterConfig{Done: done1, Drain: true})
	if err != nil {
		return nil, err
	}
	p2, err := feedbackLoop(b, "2", n, dataflow.PrinterConfig{Done: done2, Drain: true})
	if err != nil {
		return nil, err
	}
	if _, err := dataflow.NewTerminator(b.s, "arnie", done1, done2); err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{
			{"printer", fmt.Sprint(len(p1.Values()), " values")},
			{"printer2", fmt.Sprint(len(p2.Values()), " values")},
		}
	}, nil
}

func buildXbar(b *builder) (func() []Fact, error) {
	ports := intOr(b.p.Ports, 2)
	depth := intOr(b.p.Depth, 5)
	n := intOr(b.p.Iterations, 10)

	clk := b.clock("clk", timeOr(b.p.Period, 10))
	inputs := make([]sim.FIFOReader[int], ports)
	outputs := make([]sim.FIFOWriter[int], ports)
	toPrinter := make([]*sim.FIFO[int], ports)
	for i := 0; i < ports; i++ {
		in := newFIFO[int](b, fmt.Sprintf("r%d_to_x", i+1), depth)
		toPrinter[i] = newFIFO[int](b, fmt.Sprintf("x_to_p%d", i+1), depth)
		inputs[i], outputs[i] = in, toPrinter[i]
		if b.err != nil {
			return nil, b.err
		}
		if _, err := dataflow.NewRamp(b.s, fmt.Sprintf("R%d", i+1), i, ports, sim.Writer[int](in)); err != nil {
			return nil, err
		}
	}
	if b.err != nil {
		return nil, b.err
	}
	x, err := xbar.New[int](b.s, "X", clk.Posedge(), inputs, outputs, xbar.WithRecorder(b.st))
	if err != nil {
		return nil, err
	}
	printers := make([]*dataflow.Printer[int], ports)
	for i := range printers {
		printers[i], err = dataflow.NewPrinter[int](b.s, fmt.Sprintf("P%d", i+1), n*(i+1), toPrinter[i], dataflow.PrinterConfig{})
		if err != nil {
			return nil, err
		}
	}
	return func() []Fact {
		facts := []Fact{{"grants per input", fmt.Sprint(x.Grants())}}
		for _, pr := range printers {
			facts = append(facts, Fact{pr.Name(), fmt.Sprint(len(pr.Values()), " values")})
		}
		return facts
	}, nil
}

// toggle flips out on every posedge of clk.
func (b *builder) toggle(name string, clk *sim.Clock, out *sim.BoolSignal) error {
	state := true
	_, err := b.s.Method(name, func() {
		state = !state
		out.Write(state)
	}, sim.Sensitive(clk.Posedge()))
	return err
}

func buildHandshake(b *builder) (func() []Fact, error) {
	period := timeOr(b.p.Period, 10)
	data := b.boolSignal("data")
	valid := b.boolSignal("data_valid")
	dataClock := b.clock("data_clock", period)
	validClock := b.clock("data_valid_clock", 10*period)
	if b.err != nil {
		return nil, b.err
	}
	if err := b.toggle("toggle_data", dataClock, data); err != nil {
		return nil, err
	}
	if err := b.toggle("toggle_data_valid", validClock, valid); err != nil {
		return nil, err
	}
	c, err := check.NewGlitchChecker(b.s, "checker", data, valid, b.st)
	if err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{{"glitches", fmt.Sprint(c.Violations())}}
	}, nil
}

// Waveforms exercising every min/max outcome: in window, too early, too
// late, already high, and first dropping early.
var (
	firstWaveform  = []sim.Time{10, 10, 10, 10, 10, 10, 10, 10, 10, 2, 18, 10}
	secondWaveform = []sim.Time{13, 1, 17, 1, 24, 1, 1, 22, 14, 6}
)

func buildMinMax(b *builder) (func() []Fact, error) {
	first := b.boolSignal("first")
	second := b.boolSignal("second")
	if _, err := dataflow.NewWaveGen(b.s, "first_wave", first, firstWaveform); err != nil {
		return nil, err
	}
	if _, err := dataflow.NewWaveGen(b.s, "second_wave", second, secondWaveform); err != nil {
		return nil, err
	}
	c, err := check.NewMinMaxChecker(b.s, "the_checker", first, second,
		timeOr(b.p.MinDelay, 2), timeOr(b.p.MaxDelay, 5), b.st)
	if err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{{"violations", fmt.Sprint(c.Violations())}}
	}, nil
}

func buildPattern(b *builder) (func() []Fact, error) {
	cfg := dataflow.PatternConfig{
		Pattern:  b.p.Pattern,
		Interval: intOr(b.p.Interval, 10),
		Offset:   intOr(b.p.Offset, 20),
	}
	if len(cfg.Pattern) == 0 {
		cfg.Pattern = []int{0, 2, 3}
	}
	clk := b.clock("clk", timeOr(b.p.Period, 2))
	in := newFIFO[int](b, "the_fifo", intOr(b.p.Depth, 10))
	out := sim.NewSignal(b.s, "the_signal", -1)
	sim.TraceSignal(b.st, out)
	if b.err != nil {
		return nil, b.err
	}
	if _, err := dataflow.NewRamp(b.s, "the_ramp", 0, 1, sim.Writer[int](in)); err != nil {
		return nil, err
	}
	c, err := dataflow.NewPatternConverter[int](b.s, "converter", clk.Posedge(), in, out, cfg, b.st)
	if err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{
			{"last output", fmt.Sprint(out.Read())},
			{"empty input slots", fmt.Sprint(c.Misses())},
		}
	}, nil
}

func (b *builder) message() []rune {
	if b.p.Message != "" {
		return []rune(b.p.Message)
	}
	return []rune(defaultMessage)
}

func receivedFacts(got []rune) []Fact {
	return []Fact{
		{"received", fmt.Sprint(len(got), " characters")},
		{"text", fmt.Sprintf("%q", string(got))},
	}
}

func buildProdCons(b *builder) (func() []Fact, error) {
	step := timeOr(b.p.Step, 1)
	f := newFIFO[rune](b, "fifo", intOr(b.p.Depth, 10))
	if b.err != nil {
		return nil, b.err
	}
	if _, err := dataflow.NewRandomProducer[rune](b.s, "producer", f, b.message(), step); err != nil {
		return nil, err
	}
	c, err := dataflow.NewRandomConsumer[rune](b.s, "consumer", f, step)
	if err != nil {
		return nil, err
	}
	return func() []Fact { return receivedFacts(c.Received()) }, nil
}

func buildHWFifo(b *builder) (func() []Fact, error) {
	period := timeOr(b.p.Period, 2)
	clk := b.clock("c1", period)
	if b.err != nil {
		return nil, b.err
	}
	ch, err := dataflow.NewHWChannel[rune](b.s, "Fifo1", intOr(b.p.Depth, 10), clk)
	if err != nil {
		return nil, err
	}
	step := timeOr(b.p.Step, period)
	if _, err := dataflow.NewRandomProducer[rune](b.s, "Producer1", ch, b.message(), step); err != nil {
		return nil, err
	}
	c, err := dataflow.NewRandomConsumer[rune](b.s, "Consumer1", ch, step)
	if err != nil {
		return nil, err
	}
	return func() []Fact { return receivedFacts(c.Received()) }, nil
}

func buildCoeffMul(b *builder) (func() []Fact, error) {
	constOut := newFIFO[int](b, "const_out", 5)
	mulOut := newFIFO[int](b, "coeff_mul_out", 1)
	coeff := sim.NewSignal(b.s, "coefficient", 0)
	sim.TraceSignal(b.st, coeff)
	if b.err != nil {
		return nil, b.err
	}
	if _, err := dataflow.NewSignalRamp(b.s, "ramp", timeOr(b.p.Step, 10), 0, 1, coeff); err != nil {
		return nil, err
	}
	if _, err := dataflow.NewTimedConst[int](b.s, "constant", 1, timeOr(b.p.Period, 200), constOut); err != nil {
		return nil, err
	}
	if _, err := dataflow.NewCoeffMul[int](b.s, "coeff_mul", constOut, coeff, mulOut); err != nil {
		return nil, err
	}
	pr, err := dataflow.NewPrinter[int](b.s, "printer", intOr(b.p.Iterations, 10), mulOut, dataflow.PrinterConfig{})
	if err != nil {
		return nil, err
	}
	return func() []Fact {
		return []Fact{{"printed", fmt.Sprint(pr.Values())}}
	}, nil
}

func sinkFacts(pr *dataflow.Printer[int]) []Fact {
	facts := []Fact{{"sink", fmt.Sprint(len(pr.Values()), " values")}}
	if v := pr.Values(); len(v) > 0 {
		facts = append(facts, Fact{"last", fmt.Sprint(v[len(v)-1])})
	}
	return facts
}

func buildSourceSink(b *builder) (func() []Fact, error) {
	f := newFIFO[int](b, "fifo", intOr(b.p.Depth, 10))
	if b.err != nil {
		return nil, b.err
	}
	if _, err := dataflow.NewRamp(b.s, "source", 1, 1, sim.Writer[int](f)); err != nil {
		return nil, err
	}
	pr, err := dataflow.NewPrinter[int](b.s, "sink", intOr(b.p.Iterations, 100), f, dataflow.PrinterConfig{})
	if err != nil {
		return nil, err
	}
	return func() []Fact { return sinkFacts(pr) }, nil
}

func buildHWSource(b *builder) (func() []Fact, error) {
	clk := b.clock("clock", timeOr(b.p.Period, 10))
	if b.err != nil {
		return nil, b.err
	}
	ports := dataflow.HWPorts[int]{
		DataIn:   sim.NewSignal(b.s, "source_data", 0),
		ValidIn:  b.boolSignal("source_valid"),
		ReadyOut: sim.NewBoolSignal(b.s, "source_ready", true),
		DataOut:  sim.NewSignal(b.s, "sink_data", 0),
		ValidOut: b.boolSignal("sink_valid"),
		ReadyIn:  b.boolSignal("sink_ready"),
	}
	sim.TraceSignal(b.st, ports.ReadyOut.Signal)
	if _, err := dataflow.NewHWFifo(b.s, "fifo", intOr(b.p.Depth, 10), clk.Posedge(), ports); err != nil {
		return nil, err
	}
	w, err := dataflow.NewHandshakeWriter(clk, ports.DataIn, ports.ValidIn, ports.ReadyOut)
	if err != nil {
		return nil, err
	}
	r, err := dataflow.NewHandshakeReader(clk, ports.DataOut, ports.ValidOut, ports.ReadyIn)
	if err != nil {
		return nil, err
	}
	if _, err := dataflow.NewRamp(b.s, "hw_source", 1, 1, sim.Writer[int](w)); err != nil {
		return nil, err
	}
	pr, err := dataflow.NewPrinter[int](b.s, "sink", intOr(b.p.Iterations, 100), sim.Reader[int](r), dataflow.PrinterConfig{})
	if err != nil {
		return nil, err
	}
	return func() []Fact { return sinkFacts(pr) }, nil
}

func buildBus(b *builder) (func() []Fact, error) {
	sb, err := bus.New(b.s, "bus", intOr(b.p.MemSize, 100), timeOr(b.p.Cycle, 1))
	if err != nil {
		return nil, err
	}
	log := b.s.Logger()
	if _, err := b.s.Thread("reader", func(p *sim.Process) {
		data := make([]byte, 5)
		for {
			if err := sb.BurstRead(p, data, 0); err != nil {
				log.WithError(err).Error("reader stopped")
				return
			}
			p.WaitFor(5)
		}
	}); err != nil {
		return nil, err
	}
	// every 50 ticks (40 + 10) the writer contends with the reader
	if _, err := b.s.Thread("writer", func(p *sim.Process) {
		data := make([]byte, 10)
		for i := range data {
			data[i] = 3
		}
		for {
			p.WaitFor(40)
			if err := sb.BurstWrite(p, data, 0); err != nil {
				log.WithError(err).Error("writer stopped")
				return
			}
		}
	}); err != nil {
		return nil, err
	}
	return func() []Fact {
		var reads, writes int
		for _, tx := range sb.Transactions() {
			if tx.Kind == bus.KindRead {
				reads++
			} else {
				writes++
			}
		}
		return []Fact{
			{"reads", fmt.Sprint(reads)},
			{"writes", fmt.Sprint(writes)},
		}
	}, nil
}
