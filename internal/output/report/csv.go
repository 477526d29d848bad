package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lueurxax/websift/internal/process/batch"
)

var csvHeader = []string{"record_id", "status", "reason"}

// CSVReporter writes one row per record in input order.
type CSVReporter struct {
	w io.Writer
}

func NewCSVReporter(w io.Writer) *CSVReporter {
	return &CSVReporter{w: w}
}

func (r *CSVReporter) Report(res *batch.Result) error {
	cw := csv.NewWriter(r.w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rec := range res.Records {
		row := []string{rec.RecordID, rec.Verdict.Status(), string(rec.Verdict.Reason)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", rec.Position, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}
