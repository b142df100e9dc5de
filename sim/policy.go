package sim

import "fmt"

// SelectionPolicy chooses which ready task an idle machine runs next.
// Implementations are pure: the choice depends only on ready, now and the
// policy's own configuration. Select returns false only when ready is empty.
// Ties on every key resolve to the earliest task in ready, which the simulator
// keeps in arrival-event order.
type SelectionPolicy interface {
	Name() string
	Select(ready []*Task, now float64) (*Task, bool)
}

// pickFirst returns the first task for which no later task is strictly better.
func pickFirst(ready []*Task, better func(a, b *Task) bool) (*Task, bool) {
	if len(ready) == 0 {
		return nil, false
	}
	best := ready[0]
	for _, t := range ready[1:] {
		if better(t, best) {
			best = t
		}
	}
	return best, true
}

// SPTPolicy picks the shortest processing time. It ignores deadlines and priorities.
type SPTPolicy struct{}

func (p *SPTPolicy) Name() string { return "SPT" }

func (p *SPTPolicy) Select(ready []*Task, _ float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool { return a.ProcessingTime < b.ProcessingTime })
}

// EDFPolicy picks the earliest deadline. Optimal on a single machine when a
// feasible schedule exists.
type EDFPolicy struct{}

func (p *EDFPolicy) Name() string { return "EDF" }

func (p *EDFPolicy) Select(ready []*Task, _ float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool { return a.Deadline < b.Deadline })
}

// PriorityFirstPolicy always prefers HIGH over LOW, EDF within a class.
// Sustained HIGH load starves LOW tasks.
type PriorityFirstPolicy struct{}

func (p *PriorityFirstPolicy) Name() string { return "Priority-First" }

func (p *PriorityFirstPolicy) Select(ready []*Task, _ float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool {
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Deadline < b.Deadline
	})
}

// DefaultDPEAlpha is the elevation threshold used when none is configured.
const DefaultDPEAlpha = 0.7

// DPEPolicy is Dynamic Priority Elevation: a LOW task whose deadline pressure
// exceeds Alpha competes as HIGH. Ordering is then (effective priority, deadline).
type DPEPolicy struct {
	Alpha float64
}

// NewDPEPolicy validates alpha ∈ [0, 1].
func NewDPEPolicy(alpha float64) (*DPEPolicy, error) {
	if !validAlpha(alpha) {
		return nil, fmt.Errorf("%w: alpha must be in [0, 1], got %g", ErrInvalidAlpha, alpha)
	}
	return &DPEPolicy{Alpha: alpha}, nil
}

func (p *DPEPolicy) Name() string { return fmt.Sprintf("DPE (α=%g)", p.Alpha) }

// EffectivePriority is evaluated fresh for every call since pressure depends on now.
func (p *DPEPolicy) EffectivePriority(t *Task, now float64) Priority {
	if t.Priority == PriorityHigh {
		return PriorityHigh
	}
	if t.DeadlinePressure(now) > p.Alpha {
		return PriorityHigh
	}
	return PriorityLow
}

func (p *DPEPolicy) Select(ready []*Task, now float64) (*Task, bool) {
	if len(ready) == 0 {
		return nil, false
	}
	eff := make(map[*Task]Priority, len(ready))
	for _, t := range ready {
		eff[t] = p.EffectivePriority(t, now)
	}
	return pickFirst(ready, func(a, b *Task) bool {
		if eff[a] != eff[b] {
			return eff[a] < eff[b]
		}
		return a.Deadline < b.Deadline
	})
}

// MaxMinPolicy picks the longest processing time, clearing large jobs while
// capacity is free.
type MaxMinPolicy struct{}

func (p *MaxMinPolicy) Name() string { return "Max-Min" }

func (p *MaxMinPolicy) Select(ready []*Task, _ float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool { return a.ProcessingTime > b.ProcessingTime })
}

// FCFSPolicy picks the earliest arrival, then the lowest task ID.
type FCFSPolicy struct{}

func (p *FCFSPolicy) Name() string { return "FCFS" }

func (p *FCFSPolicy) Select(ready []*Task, _ float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool {
		if a.ArrivalTime != b.ArrivalTime {
			return a.ArrivalTime < b.ArrivalTime
		}
		return a.ID < b.ID
	})
}

// HRRNPolicy picks the highest response ratio (wait + service) / service.
type HRRNPolicy struct{}

func (p *HRRNPolicy) Name() string { return "HRRN" }

func (p *HRRNPolicy) Select(ready []*Task, now float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool { return a.ResponseRatio(now) > b.ResponseRatio(now) })
}

// MLFPolicy picks the minimum laxity (deadline - now) - processing_time.
type MLFPolicy struct{}

func (p *MLFPolicy) Name() string { return "MLF" }

func (p *MLFPolicy) Select(ready []*Task, now float64) (*Task, bool) {
	return pickFirst(ready, func(a, b *Task) bool { return a.Laxity(now) < b.Laxity(now) })
}
