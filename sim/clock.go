package sim

// Clock is a periodic Boolean signal generator.
type Clock struct {
	*BoolSignal
	period   Time
	high     Time
	start    Time
	posFirst bool
}

// ClockOption configures a Clock.
type ClockOption func(*clockConfig)

type clockConfig struct {
	duty     float64
	start    Time
	posFirst bool
}

// WithDutyCycle sets the fraction of the period the clock is high (default 0.5).
func WithDutyCycle(duty float64) ClockOption {
	return func(c *clockConfig) { c.duty = duty }
}

// WithStartTime delays the first edge.
func WithStartTime(t Time) ClockOption {
	return func(c *clockConfig) { c.start = t }
}

// WithNegedgeFirst makes the clock start high and fall at the start time.
func WithNegedgeFirst() ClockOption {
	return func(c *clockConfig) { c.posFirst = false }
}

// NewClock creates a clock with the given period. By default the first
// rising edge happens at time zero.
func NewClock(s *Simulator, name string, period Time, opts ...ClockOption) (*Clock, error) {
	cfg := clockConfig{duty: 0.5, posFirst: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if period < 2 {
		return nil, invalidConfig("clock %q: period must be at least 2 ticks, got %d", name, period)
	}
	if cfg.duty <= 0 || cfg.duty >= 1 {
		return nil, invalidConfig("clock %q: duty cycle must be in (0, 1), got %g", name, cfg.duty)
	}
	if cfg.start < 0 {
		return nil, invalidConfig("clock %q: negative start time %d", name, cfg.start)
	}
	high := Time(float64(period)*cfg.duty + 0.5)
	if high < 1 {
		high = 1
	}
	if high >= period {
		high = period - 1
	}

	c := &Clock{
		BoolSignal: NewBoolSignal(s, name, !cfg.posFirst),
		period:     period,
		high:       high,
		start:      cfg.start,
		posFirst:   cfg.posFirst,
	}
	if _, err := s.Thread(name+".gen", c.generate); err != nil {
		return nil, err
	}
	return c, nil
}

// Period returns the clock period.
func (c *Clock) Period() Time { return c.period }

func (c *Clock) generate(p *Process) {
	if c.start > 0 {
		p.WaitFor(c.start)
	}
	first, second := c.high, c.period-c.high
	if !c.posFirst {
		first, second = second, first
	}
	for {
		c.Write(c.posFirst)
		p.WaitFor(first)
		c.Write(!c.posFirst)
		p.WaitFor(second)
	}
}
