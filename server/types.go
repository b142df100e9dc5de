package server

import (
	"github.com/rtsched/rtsched/sim"
	"github.com/rtsched/rtsched/sim/trace"
)

// AlgorithmInfo describes one selectable algorithm.
type AlgorithmInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScenarioInfo describes one built-in scenario.
type ScenarioInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	NumMachines int        `json:"num_machines"`
	Tasks       []sim.Task `json:"tasks"`
}

// SimulationRequest is the body of POST /api/simulate.
// A nil Alpha means sim.DefaultDPEAlpha.
type SimulationRequest struct {
	Algorithm   string     `json:"algorithm"`
	NumMachines int        `json:"num_machines"`
	Layout      string     `json:"layout,omitempty"`
	Tasks       []sim.Task `json:"tasks"`
	Alpha       *float64   `json:"alpha,omitempty"`
}

// TaskResult is the final scheduling state of one task.
type TaskResult struct {
	ID             int      `json:"id"`
	Priority       string   `json:"priority"`
	ArrivalTime    float64  `json:"arrival_time"`
	StartTime      *float64 `json:"start_time"`
	CompletionTime *float64 `json:"completion_time"`
	MachineID      *int     `json:"machine_id"`
	Deadline       float64  `json:"deadline"`
	MeetsDeadline  bool     `json:"meets_deadline"`
	CPURequired    int      `json:"cpu_required"`
	RAMRequired    int      `json:"ram_required"`
}

// SimulationResult is the body of a successful POST /api/simulate.
type SimulationResult struct {
	RunID             string            `json:"run_id"`
	Algorithm         string            `json:"algorithm"`
	Makespan          float64           `json:"makespan"`
	TotalTasks        int               `json:"total_tasks"`
	HighPriorityStats sim.PriorityStats `json:"high_priority_stats"`
	LowPriorityStats  sim.PriorityStats `json:"low_priority_stats"`
	Tasks             []TaskResult      `json:"tasks"`
	Logs              []trace.Record    `json:"logs"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func newSimulationResult(runID string, r *sim.Results) SimulationResult {
	out := SimulationResult{
		RunID:             runID,
		Algorithm:         r.Policy,
		Makespan:          r.Makespan,
		TotalTasks:        r.TotalTasks,
		HighPriorityStats: r.HighPriority,
		LowPriorityStats:  r.LowPriority,
		Tasks:             make([]TaskResult, 0, len(r.Tasks)),
		Logs:              r.Log,
	}
	for _, t := range r.Tasks {
		tr := TaskResult{
			ID:            t.ID,
			Priority:      t.Priority.String(),
			ArrivalTime:   t.ArrivalTime,
			Deadline:      t.Deadline,
			MeetsDeadline: t.MeetsDeadline(),
			CPURequired:   t.CPURequired,
			RAMRequired:   t.RAMRequired,
		}
		if t.Started {
			start, machine := t.StartTime, t.MachineID
			tr.StartTime, tr.MachineID = &start, &machine
		}
		if t.Completed {
			done := t.CompletionTime
			tr.CompletionTime = &done
		}
		out.Tasks = append(out.Tasks, tr)
	}
	if out.Logs == nil {
		out.Logs = []trace.Record{}
	}
	return out
}
