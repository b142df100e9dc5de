// Package trace records the event log of a scheduling simulation as data.
// It has no dependencies on sim/ and stores pure data types.
package trace

// Kind is the type of a logged occurrence.
type Kind string

const (
	KindArrival    Kind = "ARRIVAL"
	KindStart      Kind = "START"
	KindCompletion Kind = "COMPLETION"
)

// Record captures one timestamped occurrence in a run.
// MachineID is nil for arrivals; CompletionTime is set only on START records
// (the scheduled finish time).
type Record struct {
	Time           float64  `json:"time"`
	Kind           Kind     `json:"event"`
	TaskID         int      `json:"task_id"`
	MachineID      *int     `json:"machine_id,omitempty"`
	CompletionTime *float64 `json:"completion_time,omitempty"`
	Message        string   `json:"message"`

	waited float64 // START only: time spent in the ready queue
}
