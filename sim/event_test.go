package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventQueue_TimestampOrdering tests that batches come out in timestamp order
func TestEventQueue_TimestampOrdering(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(&Event{Time: 10, Kind: EventArrival, TaskID: 1})
	q.Schedule(&Event{Time: 5, Kind: EventArrival, TaskID: 2})
	q.Schedule(&Event{Time: 15, Kind: EventArrival, TaskID: 3})

	var times []float64
	for q.Len() > 0 {
		batch := q.PopNextBatch()
		require.Len(t, batch, 1)
		times = append(times, batch[0].Time)
	}
	assert.Equal(t, []float64{5, 10, 15}, times)
	assert.Nil(t, q.PopNextBatch(), "empty queue yields nil")
}

// TestEventQueue_ArrivalsBeforeCompletions tests same-timestamp kind priority
func TestEventQueue_ArrivalsBeforeCompletions(t *testing.T) {
	q := NewEventQueue()
	// Completion pushed first, arrival second
	q.Schedule(&Event{Time: 5, Kind: EventCompletion, TaskID: 1, MachineID: 0})
	q.Schedule(&Event{Time: 5, Kind: EventArrival, TaskID: 2})
	q.Schedule(&Event{Time: 7, Kind: EventArrival, TaskID: 3})

	batch := q.PopNextBatch()
	require.Len(t, batch, 2, "batch holds every event at t=5 and nothing later")
	assert.Equal(t, EventArrival, batch[0].Kind)
	assert.Equal(t, 2, batch[0].TaskID)
	assert.Equal(t, EventCompletion, batch[1].Kind)
	assert.Equal(t, 1, q.Len())
}

// TestEventQueue_SequenceTieBreak tests that identical (time, kind) keep push order
func TestEventQueue_SequenceTieBreak(t *testing.T) {
	q := NewEventQueue()
	for _, id := range []int{7, 3, 9, 1, 5} {
		q.Schedule(&Event{Time: 0, Kind: EventArrival, TaskID: id})
	}
	batch := q.PopNextBatch()
	ids := make([]int, len(batch))
	for i, e := range batch {
		ids[i] = e.TaskID
	}
	assert.Equal(t, []int{7, 3, 9, 1, 5}, ids)
}

func TestEventQueue_ScheduleNilPanics(t *testing.T) {
	q := NewEventQueue()
	assert.Panics(t, func() { q.Schedule(nil) })
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "ARRIVAL", EventArrival.String())
	assert.Equal(t, "COMPLETION", EventCompletion.String())
	assert.Equal(t, "EventKind(9)", EventKind(9).String())
}
