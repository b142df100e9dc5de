package sim

import (
	"gonum.org/v1/gonum/stat"

	"github.com/rtsched/rtsched/sim/trace"
)

// PriorityStats counts tasks of one priority class and how many met their deadline.
type PriorityStats struct {
	Total       int `json:"total"`
	MetDeadline int `json:"met_deadline"`
}

// SuccessRate is the percentage of the class that met its deadline (0 for an empty class).
func (p PriorityStats) SuccessRate() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.MetDeadline) / float64(p.Total) * 100
}

// Results summarizes one completed run.
type Results struct {
	Policy       string          `json:"algorithm"`
	Makespan     float64         `json:"makespan"` // max completion time, 0 if nothing ran
	TotalTasks   int             `json:"total_tasks"`
	HighPriority PriorityStats   `json:"high_priority_stats"`
	LowPriority  PriorityStats   `json:"low_priority_stats"`
	Tasks        []ScheduledTask `json:"tasks"` // sorted by task ID
	Log          []trace.Record  `json:"logs"`
	SimEndedTime float64         `json:"sim_ended_time"`
}

// MetDeadline is the number of tasks across both classes that met their deadline.
func (r *Results) MetDeadline() int {
	return r.HighPriority.MetDeadline + r.LowPriority.MetDeadline
}

// MissedDeadlines is TotalTasks - MetDeadline.
func (r *Results) MissedDeadlines() int {
	return r.TotalTasks - r.MetDeadline()
}

// TotalSuccessRate is the percentage of all tasks that met their deadline.
func (r *Results) TotalSuccessRate() float64 {
	if r.TotalTasks == 0 {
		return 0
	}
	return float64(r.MetDeadline()) / float64(r.TotalTasks) * 100
}

// TotalTardiness sums how late every task finished.
func (r *Results) TotalTardiness() float64 {
	total := 0.0
	for _, t := range r.Tasks {
		total += t.Tardiness()
	}
	return total
}

// AvgResponseTime is the mean completion - arrival over completed tasks.
func (r *Results) AvgResponseTime() float64 {
	vals := make([]float64, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.Completed {
			vals = append(vals, t.ResponseTime())
		}
	}
	return mean(vals)
}

// AvgWaitingTime is the mean start - arrival over started tasks.
func (r *Results) AvgWaitingTime() float64 {
	vals := make([]float64, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.Started {
			vals = append(vals, t.WaitTime())
		}
	}
	return mean(vals)
}

// Task returns the scheduled task with the given ID.
func (r *Results) Task(id int) (ScheduledTask, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return ScheduledTask{}, false
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}
