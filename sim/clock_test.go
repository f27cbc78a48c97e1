package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordEdges(t *testing.T, s *Simulator, c *Clock) (pos, neg *[]Time) {
	t.Helper()
	var p, n []Time
	mustMethod(t, s, c.Name()+".pos", func() { p = append(p, s.Now()) }, Sensitive(c.Posedge()), DontInitialize())
	mustMethod(t, s, c.Name()+".neg", func() { n = append(n, s.Now()) }, Sensitive(c.Negedge()), DontInitialize())
	return &p, &n
}

func TestClock_DefaultWaveform(t *testing.T) {
	// GIVEN a period-10 clock
	s := newTestSim(t)
	c, err := NewClock(s, "clk", 10)
	require.NoError(t, err)
	pos, neg := recordEdges(t, s, c)

	// WHEN simulating 35 ticks
	_, err = s.Run(35)
	require.NoError(t, err)

	// THEN rising edges start at 0 with a 50% duty cycle
	assert.Equal(t, []Time{0, 10, 20, 30}, *pos)
	assert.Equal(t, []Time{5, 15, 25}, *neg)
	assert.Equal(t, Time(10), c.Period())
}

func TestClock_DutyCycleAndStart(t *testing.T) {
	s := newTestSim(t)
	c, err := NewClock(s, "clk", 10, WithDutyCycle(0.3), WithStartTime(3))
	require.NoError(t, err)
	pos, neg := recordEdges(t, s, c)

	_, err = s.Run(25)
	require.NoError(t, err)

	assert.Equal(t, []Time{3, 13, 23}, *pos)
	assert.Equal(t, []Time{6, 16}, *neg)
}

func TestClock_NegedgeFirst(t *testing.T) {
	s := newTestSim(t)
	c, err := NewClock(s, "clk", 4, WithNegedgeFirst())
	require.NoError(t, err)
	pos, neg := recordEdges(t, s, c)

	_, err = s.Run(9)
	require.NoError(t, err)

	assert.False(t, c.Read(), "low again since t=8")
	assert.Equal(t, []Time{0, 4, 8}, *neg)
	assert.Equal(t, []Time{2, 6}, *pos)
}

func TestNewClock_InvalidConfig(t *testing.T) {
	s := newTestSim(t)
	tests := []struct {
		name   string
		period Time
		opts   []ClockOption
	}{
		{"period too short", 1, nil},
		{"zero duty", 10, []ClockOption{WithDutyCycle(0)}},
		{"full duty", 10, []ClockOption{WithDutyCycle(1)}},
		{"negative start", 10, []ClockOption{WithStartTime(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClock(s, "clk", tt.period, tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
