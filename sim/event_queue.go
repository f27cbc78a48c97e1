package sim

import "container/heap"

// actionKind distinguishes the timed actions held in the queue.
type actionKind int

const (
	actionNotify  actionKind = iota // fire a timed event notification
	actionTimeout                   // wake a waiter whose wait elapsed
)

// actionKindPriority orders same-time actions: event notifications are
// processed before wait timeouts.
var actionKindPriority = map[actionKind]int{
	actionNotify:  1,
	actionTimeout: 2,
}

// timedAction is an entry of the timed queue.
type timedAction struct {
	at   Time
	kind actionKind
	id   uint64 // insertion sequence, deterministic tie-breaker

	event    *Event
	eventSeq uint64 // must match event.timedSeq, else the notification was superseded

	waiter *waiter
}

// EventQueue is a priority queue of timed actions with deterministic ordering.
// Order by: time -> kind priority -> insertion ID.
type EventQueue struct {
	actions []*timedAction
	nextID  uint64
}

func newEventQueue() *EventQueue {
	q := &EventQueue{actions: make([]*timedAction, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int {
	return len(q.actions)
}

// Less implements heap.Interface with deterministic ordering
func (q *EventQueue) Less(i, j int) bool {
	ai, aj := q.actions[i], q.actions[j]

	if ai.at != aj.at {
		return ai.at < aj.at
	}

	pi, pj := actionKindPriority[ai.kind], actionKindPriority[aj.kind]
	if pi != pj {
		return pi < pj
	}

	return ai.id < aj.id
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) {
	q.actions[i], q.actions[j] = q.actions[j], q.actions[i]
}

// Push implements heap.Interface
func (q *EventQueue) Push(x any) {
	q.actions = append(q.actions, x.(*timedAction))
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() any {
	old := q.actions
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.actions = old[0 : n-1]
	return item
}

// schedule adds an action, stamping it with the next insertion ID.
func (q *EventQueue) schedule(a *timedAction) {
	q.nextID++
	a.id = q.nextID
	heap.Push(q, a)
}

// popNext removes and returns the earliest action, or nil if empty.
func (q *EventQueue) popNext() *timedAction {
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*timedAction)
}

// peek returns the earliest action without removing it.
func (q *EventQueue) peek() *timedAction {
	if q.Len() == 0 {
		return nil
	}
	return q.actions[0]
}

// live reports whether a still has an effect when popped.
func (a *timedAction) live() bool {
	switch a.kind {
	case actionNotify:
		return a.event.timedPending && a.event.timedSeq == a.eventSeq
	case actionTimeout:
		return !a.waiter.done
	}
	return false
}

// prune drops superseded actions from the head of the queue so that peek
// reports the next instant at which something actually happens.
func (q *EventQueue) prune() {
	for q.Len() > 0 && !q.actions[0].live() {
		heap.Pop(q)
	}
}
