package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Arrivals       int
	Dispatches     int
	Completions    int
	MeanWait       float64
	MaxWait        float64
	PerMachine     map[int]int     // machine ID → tasks dispatched
	BusyTime       map[int]float64 // machine ID → total scheduled execution time
	UniqueMachines int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerMachine: make(map[int]int),
		BusyTime:   make(map[int]float64),
	}
	if st == nil {
		return summary
	}

	totalWait := 0.0
	for _, r := range st.Records {
		switch r.Kind {
		case KindArrival:
			summary.Arrivals++
		case KindCompletion:
			summary.Completions++
		case KindStart:
			summary.Dispatches++
			totalWait += r.waited
			if r.waited > summary.MaxWait {
				summary.MaxWait = r.waited
			}
			if r.MachineID != nil {
				summary.PerMachine[*r.MachineID]++
				if r.CompletionTime != nil {
					summary.BusyTime[*r.MachineID] += *r.CompletionTime - r.Time
				}
			}
		}
	}
	if summary.Dispatches > 0 {
		summary.MeanWait = totalWait / float64(summary.Dispatches)
	}
	summary.UniqueMachines = len(summary.PerMachine)

	return summary
}
