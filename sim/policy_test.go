package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyTasks(tasks ...Task) []*Task {
	out := make([]*Task, len(tasks))
	for i := range tasks {
		t := tasks[i].Normalize()
		out[i] = &t
	}
	return out
}

func selectID(t *testing.T, p SelectionPolicy, ready []*Task, now float64) int {
	t.Helper()
	chosen, ok := p.Select(ready, now)
	require.True(t, ok)
	return chosen.ID
}

func TestPolicies_EmptyReadyReturnsFalse(t *testing.T) {
	dpe, err := NewDPEPolicy(0.5)
	require.NoError(t, err)
	for _, p := range []SelectionPolicy{
		&SPTPolicy{}, &EDFPolicy{}, &PriorityFirstPolicy{}, dpe,
		&MaxMinPolicy{}, &FCFSPolicy{}, &HRRNPolicy{}, &MLFPolicy{},
	} {
		chosen, ok := p.Select(nil, 0)
		assert.False(t, ok, p.Name())
		assert.Nil(t, chosen, p.Name())
	}
}

func TestPolicies_SelectionKeys(t *testing.T) {
	// A: short, late deadline, LOW, arrived first
	// B: long, early deadline, HIGH
	// C: medium, medium deadline, LOW
	ready := readyTasks(
		Task{ID: 1, ArrivalTime: 0, ProcessingTime: 1, Priority: PriorityLow, Deadline: 30},
		Task{ID: 2, ArrivalTime: 1, ProcessingTime: 8, Priority: PriorityHigh, Deadline: 10},
		Task{ID: 3, ArrivalTime: 2, ProcessingTime: 4, Priority: PriorityLow, Deadline: 12},
	)
	now := 2.0

	assert.Equal(t, 1, selectID(t, &SPTPolicy{}, ready, now))
	assert.Equal(t, 2, selectID(t, &EDFPolicy{}, ready, now))
	assert.Equal(t, 2, selectID(t, &PriorityFirstPolicy{}, ready, now))
	assert.Equal(t, 2, selectID(t, &MaxMinPolicy{}, ready, now))
	assert.Equal(t, 1, selectID(t, &FCFSPolicy{}, ready, now))
	// Response ratios at t=2: A (2+1)/1=3, B (1+8)/8=1.125, C (0+4)/4=1
	assert.Equal(t, 1, selectID(t, &HRRNPolicy{}, ready, now))
	// Laxities at t=2: A 27, B 0, C 6
	assert.Equal(t, 2, selectID(t, &MLFPolicy{}, ready, now))
}

func TestPolicies_TiesResolveToEarliestInReady(t *testing.T) {
	ready := readyTasks(
		Task{ID: 5, ProcessingTime: 3, Priority: PriorityLow, Deadline: 10},
		Task{ID: 2, ProcessingTime: 3, Priority: PriorityLow, Deadline: 10},
	)
	dpe, err := NewDPEPolicy(0.9)
	require.NoError(t, err)
	for _, p := range []SelectionPolicy{
		&SPTPolicy{}, &EDFPolicy{}, &PriorityFirstPolicy{}, dpe,
		&MaxMinPolicy{}, &HRRNPolicy{}, &MLFPolicy{},
	} {
		assert.Equal(t, 5, selectID(t, p, ready, 0), p.Name())
	}
	// FCFS breaks arrival ties by ID instead
	assert.Equal(t, 2, selectID(t, &FCFSPolicy{}, ready, 0))
}

func TestPriorityFirst_EDFWithinClass(t *testing.T) {
	ready := readyTasks(
		Task{ID: 1, Priority: PriorityLow, Deadline: 1},
		Task{ID: 2, Priority: PriorityHigh, Deadline: 50},
		Task{ID: 3, Priority: PriorityHigh, Deadline: 20},
	)
	assert.Equal(t, 3, selectID(t, &PriorityFirstPolicy{}, ready, 0))
}

func TestDPE_ElevatesUnderPressure(t *testing.T) {
	low := Task{ID: 1, ArrivalTime: 0, ProcessingTime: 5, Priority: PriorityLow, Deadline: 16}
	high := Task{ID: 2, ArrivalTime: 10, ProcessingTime: 2, Priority: PriorityHigh, Deadline: 30}
	ready := readyTasks(low, high)

	dpe, err := NewDPEPolicy(0.5)
	require.NoError(t, err)

	// pressure(low, 4) = 0.25 → stays LOW
	assert.Equal(t, PriorityLow, dpe.EffectivePriority(ready[0], 4))
	assert.Equal(t, 2, selectID(t, dpe, ready, 4))

	// pressure(low, 10) = 0.625 > 0.5 → elevated; earlier deadline wins the HIGH tie
	assert.Equal(t, PriorityHigh, dpe.EffectivePriority(ready[0], 10))
	assert.Equal(t, 1, selectID(t, dpe, ready, 10))

	// Elevation is evaluated per call: asking about an earlier time again un-elevates
	assert.Equal(t, 2, selectID(t, dpe, ready, 4))
}

func TestDPE_AlphaBounds(t *testing.T) {
	for _, alpha := range []float64{0, 0.3, 1} {
		p, err := NewDPEPolicy(alpha)
		require.NoError(t, err)
		assert.Equal(t, alpha, p.Alpha)
	}
	for _, alpha := range []float64{-0.1, 1.01, math.NaN()} {
		_, err := NewDPEPolicy(alpha)
		assert.True(t, errors.Is(err, ErrInvalidAlpha), "alpha=%v", alpha)
	}
}

func TestDPE_Name(t *testing.T) {
	p, err := NewDPEPolicy(0.3)
	require.NoError(t, err)
	assert.Equal(t, "DPE (α=0.3)", p.Name())
}
