package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lueurxax/websift/internal/process/batch"
)

const (
	profilingTitle = "--- Profiling Stats ---"
	profilingRule  = 65
)

// SummaryReporter prints the run totals, the drop-reason histogram and,
// when stage timings are present, the profiling table.
type SummaryReporter struct {
	w io.Writer
}

func NewSummaryReporter(w io.Writer) *SummaryReporter {
	return &SummaryReporter{w: w}
}

func (r *SummaryReporter) Report(res *batch.Result) error {
	bw := bufio.NewWriter(r.w)
	agg := res.Aggregate

	fmt.Fprintf(bw, "Total docs: %d\n", agg.Total)
	fmt.Fprintf(bw, "Kept docs: %d\n", agg.Kept)
	fmt.Fprintf(bw, "Dropped docs: %d\n", agg.Dropped)
	fmt.Fprintf(bw, "Docs/sec: %.2f\n", res.DocsPerSecond())
	fmt.Fprintf(bw, "MB/sec: %.2f\n", res.MBPerSecond())

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Drop reasons:")

	for _, rc := range agg.SortedReasons() {
		fmt.Fprintf(bw, "  %s: %d\n", rc.Reason, rc.Count)
	}

	if len(res.Stages) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, profilingTitle)
		fmt.Fprintf(bw, "%-25s%15s%10s%15s\n", "Name", "Total(ms)", "Calls", "Avg(ms)")
		fmt.Fprintln(bw, strings.Repeat("-", profilingRule))

		for _, s := range res.Stages {
			fmt.Fprintf(bw, "%-25s%15.3f%10d%15.3f\n", s.Name, millis(s.Total), s.Calls, millis(s.Avg()))
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
