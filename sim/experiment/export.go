package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{
	"Scenario", "Algorithm", "Total Tasks", "High Priority Tasks", "Low Priority Tasks",
	"High Met Deadline", "Low Met Deadline", "Total Met Deadline",
	"High Success Rate (%)", "Low Success Rate (%)", "Total Success Rate (%)",
	"Makespan", "Avg Response Time", "Avg Waiting Time", "Simulation Time", "Total Tardiness",
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Scenario, r.Algorithm,
			strconv.Itoa(r.TotalTasks), strconv.Itoa(r.HighTasks), strconv.Itoa(r.LowTasks),
			strconv.Itoa(r.HighMet), strconv.Itoa(r.LowMet), strconv.Itoa(r.TotalMet),
			ftoa(r.HighSuccessRate), ftoa(r.LowSuccessRate), ftoa(r.TotalSuccessRate),
			ftoa(r.Makespan), ftoa(r.AvgResponseTime), ftoa(r.AvgWaitingTime),
			ftoa(r.SimulationTime), ftoa(r.TotalTardiness),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing csv row %s/%s: %w", r.Scenario, r.Algorithm, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows written by WriteCSV. The header must match CSVHeader.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i, col := range CSVHeader {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("csv column %d: expected %q, got %q", i+1, col, header[i])
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string) (Row, error) {
	p := fieldParser{rec: rec}
	row := Row{
		Scenario:         rec[0],
		Algorithm:        rec[1],
		TotalTasks:       p.atoi(2),
		HighTasks:        p.atoi(3),
		LowTasks:         p.atoi(4),
		HighMet:          p.atoi(5),
		LowMet:           p.atoi(6),
		TotalMet:         p.atoi(7),
		HighSuccessRate:  p.atof(8),
		LowSuccessRate:   p.atof(9),
		TotalSuccessRate: p.atof(10),
		Makespan:         p.atof(11),
		AvgResponseTime:  p.atof(12),
		AvgWaitingTime:   p.atof(13),
		SimulationTime:   p.atof(14),
		TotalTardiness:   p.atof(15),
	}
	return row, p.err
}

// fieldParser keeps the first conversion error of a record.
type fieldParser struct {
	rec []string
	err error
}

func (p *fieldParser) atoi(i int) int {
	v, err := strconv.Atoi(strings.TrimSpace(p.rec[i]))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %q: %w", CSVHeader[i], err)
	}
	return v
}

func (p *fieldParser) atof(i int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.rec[i]), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %q: %w", CSVHeader[i], err)
	}
	return v
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PrintComparison writes a per-algorithm comparison table.
func PrintComparison(w io.Writer, summaries []AlgorithmSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Algorithm\tAvg Success %\tMedian Success %\tAvg High %\tAvg Low %\tMin Low %\tPerfect Runs\tAvg Makespan\tAvg Tardiness")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d/%d\t%.2f\t%.2f\n",
			s.Algorithm, s.Total.Mean, s.Total.P50, s.High.Mean, s.Low.Mean, s.Low.Min,
			s.PerfectRuns, s.Total.Count, s.Makespan.Mean, s.Tardiness.Mean)
	}
	return tw.Flush()
}

// PrintAnalysis writes the comparison table followed by the best algorithm by
// success rate and the fastest by makespan.
func PrintAnalysis(w io.Writer, summaries []AlgorithmSummary) error {
	if err := PrintComparison(w, summaries); err != nil {
		return err
	}
	if best, ok := BestBySuccess(summaries); ok {
		fmt.Fprintf(w, "\nBest success rate: %s (%.2f%%)\n", best.Algorithm, best.Total.Mean)
	}
	if fastest, ok := FastestByMakespan(summaries); ok {
		if _, err := fmt.Fprintf(w, "Fastest makespan:  %s (%.2f)\n", fastest.Algorithm, fastest.Makespan.Mean); err != nil {
			return err
		}
	}
	return nil
}
