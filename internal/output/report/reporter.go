// Package report renders batch results: per-record CSV, a JSON summary and
// the human-readable stdout summary.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/lueurxax/websift/internal/process/batch"
)

// Reporter consumes the result of a successful batch run.
type Reporter interface {
	Report(res *batch.Result) error
}

// Multi runs reporters in order and stops at the first failure.
type Multi []Reporter

func (m Multi) Report(res *batch.Result) error {
	for _, r := range m {
		if err := r.Report(res); err != nil {
			return err
		}
	}

	return nil
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(res *batch.Result) error

func (f ReporterFunc) Report(res *batch.Result) error {
	return f(res)
}

// FileReporter builds a reporter that writes into w.
type FileReporter func(w io.Writer) Reporter

// File returns a reporter that renders into path via ToFile.
func File(path string, newReporter FileReporter) Reporter {
	return ReporterFunc(func(res *batch.Result) error {
		return ToFile(path, newReporter, res)
	})
}

// ToFile creates path and renders res into it with the reporter built by newReporter.
func ToFile(path string, newReporter FileReporter, res *batch.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report %s: %w", path, cerr)
		}
	}()

	if err := newReporter(f).Report(res); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}

	return nil
}
