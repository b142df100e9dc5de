package sim

import (
	"fmt"
	"math"
	"strings"
)

// Priority is a task's static priority class.
// Lower ordinal means higher urgency, so it can be used directly as a sort key.
type Priority int

const (
	PriorityHigh Priority = 1
	PriorityLow  Priority = 2
)

// ParsePriority converts "HIGH"/"LOW" (any case) to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return PriorityHigh, nil
	case "LOW":
		return PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q; valid: HIGH, LOW", s)
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "HIGH"
	case PriorityLow:
		return "LOW"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// MarshalText encodes the priority as "HIGH" or "LOW" for YAML and JSON.
func (p Priority) MarshalText() ([]byte, error) {
	if p != PriorityHigh && p != PriorityLow {
		return nil, fmt.Errorf("cannot marshal %s", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts the forms produced by MarshalText.
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ResponseRatioEpsilon floors the service time in ResponseRatio so a
// zero-length task does not divide by zero.
const ResponseRatioEpsilon = 1e-4

// Task is the immutable specification of one unit of schedulable work.
// Scheduling results for a run live in Outcome, never on the Task itself.
type Task struct {
	ID             int      `yaml:"id" json:"id"`
	ArrivalTime    float64  `yaml:"arrival_time" json:"arrival_time"`
	ProcessingTime float64  `yaml:"processing_time" json:"processing_time"`
	Priority       Priority `yaml:"priority" json:"priority"`
	Deadline       float64  `yaml:"deadline" json:"deadline"`
	CPURequired    int      `yaml:"cpu_required,omitempty" json:"cpu_required,omitempty"`
	RAMRequired    int      `yaml:"ram_required,omitempty" json:"ram_required,omitempty"`
}

// Normalize returns a copy with zero resource requirements replaced by 1.
func (t Task) Normalize() Task {
	if t.CPURequired == 0 {
		t.CPURequired = 1
	}
	if t.RAMRequired == 0 {
		t.RAMRequired = 1
	}
	return t
}

// Validate rejects malformed tasks. A deadline that cannot be met
// (deadline < arrival+processing) is infeasible but still valid.
func (t Task) Validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"arrival_time", t.ArrivalTime},
		{"processing_time", t.ProcessingTime},
		{"deadline", t.Deadline},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: task %d: %s must be finite, got %f", ErrInvalidTask, t.ID, f.name, f.val)
		}
		if f.val < 0 {
			return fmt.Errorf("%w: task %d: %s must be non-negative, got %f", ErrInvalidTask, t.ID, f.name, f.val)
		}
	}
	if t.Deadline < t.ArrivalTime {
		return fmt.Errorf("%w: task %d: deadline %g precedes arrival %g", ErrInvalidTask, t.ID, t.Deadline, t.ArrivalTime)
	}
	if t.Priority != PriorityHigh && t.Priority != PriorityLow {
		return fmt.Errorf("%w: task %d: unknown priority %d", ErrInvalidTask, t.ID, int(t.Priority))
	}
	if t.CPURequired < 0 || t.RAMRequired < 0 {
		return fmt.Errorf("%w: task %d: resource requirements must be positive (cpu=%d, ram=%d)",
			ErrInvalidTask, t.ID, t.CPURequired, t.RAMRequired)
	}
	return nil
}

// Feasible reports whether the task could meet its deadline if started on arrival.
func (t Task) Feasible() bool {
	return t.ArrivalTime+t.ProcessingTime <= t.Deadline
}

// DeadlinePressure is the fraction of the task's scheduling window already
// spent waiting at time now. It is +Inf when the window is empty and grows
// past 1 once the deadline has passed.
func (t Task) DeadlinePressure(now float64) float64 {
	available := t.Deadline - t.ArrivalTime
	if available <= 0 {
		return math.Inf(1)
	}
	return (now - t.ArrivalTime) / available
}

// Laxity is the slack left before the deadline if the task started at now.
func (t Task) Laxity(now float64) float64 {
	return (t.Deadline - now) - t.ProcessingTime
}

// ResponseRatio is (wait + service) / service at time now.
func (t Task) ResponseRatio(now float64) float64 {
	service := math.Max(t.ProcessingTime, ResponseRatioEpsilon)
	return (now - t.ArrivalTime + service) / service
}

// Outcome is the per-run scheduling record of one task.
// Each field is written at most once during a run.
type Outcome struct {
	TaskID         int     `json:"task_id"`
	MachineID      int     `json:"machine_id"`
	StartTime      float64 `json:"start_time"`
	CompletionTime float64 `json:"completion_time"`
	Started        bool    `json:"started"`
	Completed      bool    `json:"completed"`
}

// ScheduledTask pairs a task specification with its outcome in one run.
type ScheduledTask struct {
	Task
	Outcome
}

// MeetsDeadline is true iff the task completed no later than its deadline.
func (st ScheduledTask) MeetsDeadline() bool {
	return st.Completed && st.CompletionTime <= st.Deadline
}

// DeadlinePressure is zero once the task has started.
func (st ScheduledTask) DeadlinePressure(now float64) float64 {
	if st.Started {
		return 0
	}
	return st.Task.DeadlinePressure(now)
}

// Tardiness is how far past its deadline the task completed (0 if on time or unfinished).
func (st ScheduledTask) Tardiness() float64 {
	if !st.Completed {
		return 0
	}
	return math.Max(0, st.CompletionTime-st.Deadline)
}

// WaitTime is start - arrival for started tasks.
func (st ScheduledTask) WaitTime() float64 {
	if !st.Started {
		return 0
	}
	return st.StartTime - st.ArrivalTime
}

// ResponseTime is completion - arrival for completed tasks.
func (st ScheduledTask) ResponseTime() float64 {
	if !st.Completed {
		return 0
	}
	return st.CompletionTime - st.ArrivalTime
}
