package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_WriteVisibleAfterUpdate(t *testing.T) {
	// GIVEN a writer and a reader in the same delta cycle
	s := newTestSim(t)
	sg := NewSignal(s, "sig", 0)
	var sameDelta, nextDelta int
	mustThread(t, s, "writer", func(p *Process) {
		sg.Write(5)
		sameDelta = sg.Read()
		p.WaitFor(0)
		nextDelta = sg.Read()
	})

	// WHEN the simulation runs
	_, err := s.Run(Forever)
	require.NoError(t, err)

	// THEN the write is only visible from the next delta cycle
	assert.Equal(t, 0, sameDelta)
	assert.Equal(t, 5, nextDelta)
}

func TestSignal_MultipleWritesInOneDelta_LastWins(t *testing.T) {
	// GIVEN one process writing three times and two processes writing once each
	s := newTestSim(t)
	a := NewSignal(s, "a", 0)
	b := NewSignal(s, "b", 0)
	var commitsA, commitsB []int
	a.Observe(func(_ Time, v int) { commitsA = append(commitsA, v) })
	b.Observe(func(_ Time, v int) { commitsB = append(commitsB, v) })
	mustThread(t, s, "burst", func(p *Process) {
		a.Write(1)
		a.Write(2)
		a.Write(3)
	})
	mustThread(t, s, "first", func(p *Process) { b.Write(10) })
	mustThread(t, s, "second", func(p *Process) { b.Write(20) })

	// WHEN the simulation runs
	_, err := s.Run(Forever)
	require.NoError(t, err)

	// THEN only the last write is committed and the change event fires once
	assert.Equal(t, []int{3}, commitsA)
	assert.Equal(t, []int{20}, commitsB)
	assert.Equal(t, uint64(1), a.Changed().Generation())
	assert.Equal(t, uint64(1), b.Changed().Generation())
}

func TestSignal_SameValueWrite_NoChange(t *testing.T) {
	s := newTestSim(t)
	sg := NewSignal(s, "sig", 7)
	mustThread(t, s, "w", func(p *Process) { sg.Write(7) })

	_, err := s.Run(Forever)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), sg.Changed().Generation())
}

func TestSignal_EventOnlyInFollowingDelta(t *testing.T) {
	// GIVEN a reader woken by a value change
	s := newTestSim(t)
	sg := NewSignal(s, "sig", 0)
	var onWake, later bool
	mustThread(t, s, "reader", func(p *Process) {
		p.Wait(sg)
		onWake = sg.Event()
		p.WaitFor(0)
		later = sg.Event()
	})
	mustThread(t, s, "writer", func(p *Process) {
		p.WaitFor(1)
		sg.Write(1)
	})

	// WHEN the simulation runs
	_, err := s.Run(Forever)
	require.NoError(t, err)

	// THEN Event is true right after the change and false one delta later
	assert.True(t, onWake)
	assert.False(t, later)
}

func TestSignal_UnobservedChange_StaleAfterTimeAdvance(t *testing.T) {
	// GIVEN a change nobody waits for, then a reader waking later by timeout
	s := newTestSim(t)
	sg := NewSignal(s, "sig", 0)
	mustThread(t, s, "writer", func(p *Process) { sg.Write(1) })
	var event bool
	mustThread(t, s, "reader", func(p *Process) {
		p.WaitFor(10)
		event = sg.Event()
	})

	// WHEN the simulation runs
	_, err := s.Run(Forever)
	require.NoError(t, err)

	// THEN the old change is not reported as an event
	assert.False(t, event)
	assert.Equal(t, 1, sg.Read())
}

func TestBoolSignal_Edges(t *testing.T) {
	// GIVEN a Boolean signal toggled at 1, 2, 3
	s := newTestSim(t)
	b := NewBoolSignal(s, "b", false)
	var pos, neg []Time
	mustMethod(t, s, "pos", func() { pos = append(pos, s.Now()) }, Sensitive(b.Posedge()), DontInitialize())
	mustMethod(t, s, "neg", func() { neg = append(neg, s.Now()) }, Sensitive(b.Negedge()), DontInitialize())
	mustThread(t, s, "toggler", func(p *Process) {
		for _, v := range []bool{true, false, true} {
			p.WaitFor(1)
			b.Write(v)
		}
	})

	// WHEN the simulation runs
	_, err := s.Run(Forever)
	require.NoError(t, err)

	// THEN each edge event fires on its transitions only
	assert.Equal(t, []Time{1, 3}, pos)
	assert.Equal(t, []Time{2}, neg)
}

func TestSignal_ObserveReceivesTime(t *testing.T) {
	s := newTestSim(t)
	sg := NewSignal(s, "sig", "")
	type change struct {
		at Time
		v  string
	}
	var got []change
	sg.Observe(func(at Time, v string) { got = append(got, change{at, v}) })
	mustThread(t, s, "w", func(p *Process) {
		p.WaitFor(4)
		sg.Write("x")
		p.WaitFor(4)
		sg.Write("y")
	})

	_, err := s.Run(Forever)
	require.NoError(t, err)

	assert.Equal(t, []change{{4, "x"}, {8, "y"}}, got)
	assert.Equal(t, "sig", sg.Name())
}
