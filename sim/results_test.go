package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResults_Aggregates(t *testing.T) {
	tasks := []Task{
		{ID: 1, ArrivalTime: 0, ProcessingTime: 2, Priority: PriorityHigh, Deadline: 50},
		{ID: 2, ArrivalTime: 0, ProcessingTime: 10, Priority: PriorityLow, Deadline: 11},
	}
	res := runTasks(t, tasks, 1, &SPTPolicy{})

	assert.Equal(t, "SPT", res.Policy)
	assert.Equal(t, 2, res.TotalTasks)
	assert.Equal(t, PriorityStats{Total: 1, MetDeadline: 1}, res.HighPriority)
	assert.Equal(t, PriorityStats{Total: 1, MetDeadline: 0}, res.LowPriority)
	assert.Equal(t, 1, res.MetDeadline())
	assert.Equal(t, 1, res.MissedDeadlines())
	assert.Equal(t, 50.0, res.TotalSuccessRate())
	assert.Equal(t, 12.0, res.Makespan)
	assert.Equal(t, 12.0, res.SimEndedTime)
	assert.Equal(t, 1.0, res.TotalTardiness())
	assert.InDelta(t, 7.0, res.AvgResponseTime(), 1e-9)
	assert.InDelta(t, 1.0, res.AvgWaitingTime(), 1e-9)

	_, ok := res.Task(42)
	assert.False(t, ok)
}

func TestPriorityStats_SuccessRate(t *testing.T) {
	assert.Zero(t, PriorityStats{}.SuccessRate(), "empty class")
	assert.Equal(t, 75.0, PriorityStats{Total: 4, MetDeadline: 3}.SuccessRate())
}

func TestResults_EmptyAverages(t *testing.T) {
	r := &Results{}
	assert.Zero(t, r.AvgResponseTime())
	assert.Zero(t, r.AvgWaitingTime())
	assert.Zero(t, r.TotalSuccessRate())
}
