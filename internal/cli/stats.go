package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lueurxax/websift/internal/core/domain"
	"github.com/lueurxax/websift/internal/output/report"
	"github.com/lueurxax/websift/internal/process/batch"
	"github.com/lueurxax/websift/internal/storage"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <run-id>",
		Short: "Print the totals and drop reasons of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStats(cmd, args[0])
		},
	}
}

func (a *app) runStats(cmd *cobra.Command, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	ctx := cmd.Context()

	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	stats, err := db.GetRunReasonStats(ctx, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run ID: %s\n", run.ID)
	fmt.Fprintf(out, "Input: %s\n", run.Input)
	fmt.Fprintf(out, "Created: %s\n", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Workers: %d\n", run.Workers)

	return report.NewSummaryReporter(out).Report(storedResult(run, stats))
}

// storedResult rebuilds enough of a batch result for the summary reporter.
func storedResult(run *storage.Run, stats []storage.DropReasonStat) *batch.Result {
	return &batch.Result{
		RunID: run.ID,
		Aggregate: domain.Aggregate{
			Total:   run.Docs,
			Kept:    run.Kept,
			Dropped: run.Dropped,
			Bytes:   run.Bytes,
			Reasons: storage.ReasonCounts(stats),
		},
		Elapsed: run.Elapsed,
		Workers: run.Workers,
	}
}
