package experiment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// percentile interpolates linearly between closest ranks of sorted values.
// p is in [0, 100].
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// AlgorithmSummary aggregates one algorithm's rows across scenarios.
type AlgorithmSummary struct {
	Algorithm   string
	Total       Distribution // total success rate, percent
	Low         Distribution // low-priority success rate, percent
	High        Distribution // high-priority success rate, percent
	Makespan    Distribution
	Tardiness   Distribution
	PerfectRuns int // scenarios where every task met its deadline
}

// Summarize groups rows by algorithm, preserving first-seen algorithm order.
// Low-priority statistics only include scenarios that have low-priority tasks,
// and likewise for high.
func Summarize(rows []Row) []AlgorithmSummary {
	type acc struct {
		total, low, high, makespan, tardiness []float64
		perfect                               int
	}
	order := make([]string, 0)
	by := make(map[string]*acc)
	for _, r := range rows {
		a, ok := by[r.Algorithm]
		if !ok {
			a = &acc{}
			by[r.Algorithm] = a
			order = append(order, r.Algorithm)
		}
		a.total = append(a.total, r.TotalSuccessRate)
		if r.LowTasks > 0 {
			a.low = append(a.low, r.LowSuccessRate)
		}
		if r.HighTasks > 0 {
			a.high = append(a.high, r.HighSuccessRate)
		}
		a.makespan = append(a.makespan, r.Makespan)
		a.tardiness = append(a.tardiness, r.TotalTardiness)
		if r.TotalMet == r.TotalTasks {
			a.perfect++
		}
	}
	out := make([]AlgorithmSummary, 0, len(order))
	for _, name := range order {
		a := by[name]
		out = append(out, AlgorithmSummary{
			Algorithm:   name,
			Total:       NewDistribution(a.total),
			Low:         NewDistribution(a.low),
			High:        NewDistribution(a.high),
			Makespan:    NewDistribution(a.makespan),
			Tardiness:   NewDistribution(a.tardiness),
			PerfectRuns: a.perfect,
		})
	}
	return out
}

// BestBySuccess returns the summary with the highest mean total success rate.
// Ties keep the earlier summary. ok is false for empty input.
func BestBySuccess(summaries []AlgorithmSummary) (best AlgorithmSummary, ok bool) {
	for i, s := range summaries {
		if i == 0 || s.Total.Mean > best.Total.Mean {
			best = s
		}
	}
	return best, len(summaries) > 0
}

// FastestByMakespan returns the summary with the lowest mean makespan.
// Ties keep the earlier summary. ok is false for empty input.
func FastestByMakespan(summaries []AlgorithmSummary) (fastest AlgorithmSummary, ok bool) {
	for i, s := range summaries {
		if i == 0 || s.Makespan.Mean < fastest.Makespan.Mean {
			fastest = s
		}
	}
	return fastest, len(summaries) > 0
}
