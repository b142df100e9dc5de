package trace

import "fmt"

// Level controls whether a run keeps its event log.
type Level string

const (
	// LevelNone disables recording (zero overhead).
	LevelNone Level = "none"
	// LevelEvents records every arrival, start and completion.
	LevelEvents Level = "events"
)

// validLevels maps accepted trace level strings.
var validLevels = map[Level]bool{
	LevelNone:   true,
	LevelEvents: true,
	"":          true, // empty defaults to events
}

// IsValidLevel returns true if the given level string is a recognized trace level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// SimulationTrace collects the event log of one run.
type SimulationTrace struct {
	Level   Level
	Records []Record
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level Level) *SimulationTrace {
	if level == "" {
		level = LevelEvents
	}
	return &SimulationTrace{
		Level:   level,
		Records: make([]Record, 0),
	}
}

func (st *SimulationTrace) enabled() bool {
	return st != nil && st.Level != LevelNone
}

// RecordArrival logs a task entering the ready queue.
func (st *SimulationTrace) RecordArrival(now float64, taskID, cpu, ram int) {
	if !st.enabled() {
		return
	}
	st.Records = append(st.Records, Record{
		Time:    now,
		Kind:    KindArrival,
		TaskID:  taskID,
		Message: fmt.Sprintf("Task %d arrives (Needs %dCPU, %dGB)", taskID, cpu, ram),
	})
}

// RecordStart logs a dispatch. arrival is used to derive the wait for Summarize.
func (st *SimulationTrace) RecordStart(now float64, taskID, machineID int, completion, arrival float64) {
	if !st.enabled() {
		return
	}
	m, c := machineID, completion
	st.Records = append(st.Records, Record{
		Time:           now,
		Kind:           KindStart,
		TaskID:         taskID,
		MachineID:      &m,
		CompletionTime: &c,
		Message:        fmt.Sprintf("Task %d starts on Machine %d (completes at %.1f)", taskID, machineID, completion),
		waited:         now - arrival,
	})
}

// RecordCompletion logs a task finishing on a machine.
func (st *SimulationTrace) RecordCompletion(now float64, taskID, machineID int) {
	if !st.enabled() {
		return
	}
	m := machineID
	st.Records = append(st.Records, Record{
		Time:      now,
		Kind:      KindCompletion,
		TaskID:    taskID,
		MachineID: &m,
		Message:   fmt.Sprintf("Task %d completes on Machine %d", taskID, machineID),
	})
}
