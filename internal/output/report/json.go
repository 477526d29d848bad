package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lueurxax/websift/internal/process/batch"
)

// JSONReporter writes the run summary as a single JSON object.
type JSONReporter struct {
	w      io.Writer
	indent bool
}

func NewJSONReporter(w io.Writer, indent bool) *JSONReporter {
	return &JSONReporter{w: w, indent: indent}
}

// JSONOutput is the JSON report document.
type JSONOutput struct {
	RunID      string           `json:"run_id"`
	Docs       int64            `json:"docs"`
	Kept       int64            `json:"kept"`
	Dropped    int64            `json:"dropped"`
	Reasons    map[string]int64 `json:"reasons"`
	ElapsedSec float64          `json:"elapsed_sec"`
	DocsSec    float64          `json:"docs_sec"`
	MBSec      float64          `json:"mb_sec"`
}

func (r *JSONReporter) Report(res *batch.Result) error {
	output := JSONOutput{
		RunID:      res.RunID.String(),
		Docs:       res.Aggregate.Total,
		Kept:       res.Aggregate.Kept,
		Dropped:    res.Aggregate.Dropped,
		Reasons:    make(map[string]int64, len(res.Aggregate.Reasons)),
		ElapsedSec: res.Elapsed.Seconds(),
		DocsSec:    res.DocsPerSecond(),
		MBSec:      res.MBPerSecond(),
	}

	for reason, n := range res.Aggregate.Reasons {
		output.Reasons[string(reason)] = n
	}

	encoder := json.NewEncoder(r.w)
	if r.indent {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encoding json report: %w", err)
	}

	return nil
}
