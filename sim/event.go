package sim

import (
	"container/heap"
	"fmt"
)

// EventKind distinguishes the two occurrences on the simulated timeline.
type EventKind int

const (
	EventArrival EventKind = iota
	EventCompletion
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "ARRIVAL"
	case EventCompletion:
		return "COMPLETION"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// EventKindPriority orders same-timestamp events: lower value is processed first.
// Arrivals precede completions so a task arriving at the instant a machine
// frees up is visible to the policy for that slot.
var EventKindPriority = map[EventKind]int{
	EventArrival:    0,
	EventCompletion: 1,
}

// Event is one pending occurrence. MachineID is meaningful only for completions.
type Event struct {
	Time      float64
	Kind      EventKind
	TaskID    int
	MachineID int

	seq uint64 // assigned on push; deterministic tie-breaker
}

// EventQueue orders events by timestamp → kind priority → push sequence.
// Use Schedule/PopNextBatch; the heap.Interface methods are for container/heap only.
type EventQueue struct {
	events  []*Event
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make([]*Event, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *EventQueue) Len() int { return len(q.events) }

// Less implements heap.Interface with deterministic ordering
func (q *EventQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.Time != ej.Time {
		return ei.Time < ej.Time
	}
	pi, pj := EventKindPriority[ei.Kind], EventKindPriority[ej.Kind]
	if pi != pj {
		return pi < pj
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface
func (q *EventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

// Push implements heap.Interface
func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(*Event))
}

// Pop implements heap.Interface
func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.events = old[:n-1]
	return item
}

// Schedule inserts an event in O(log n).
func (q *EventQueue) Schedule(e *Event) {
	if e == nil {
		panic("Schedule: event must not be nil")
	}
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(q, e)
}

// PopNextBatch removes every event sharing the earliest timestamp.
// Arrivals come before completions; an empty queue yields nil.
func (q *EventQueue) PopNextBatch() []*Event {
	if len(q.events) == 0 {
		return nil
	}
	first := heap.Pop(q).(*Event)
	batch := []*Event{first}
	for len(q.events) > 0 && q.events[0].Time == first.Time {
		batch = append(batch, heap.Pop(q).(*Event))
	}
	return batch
}
