package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/ingest/reader"
	"github.com/lueurxax/websift/internal/output/report"
	"github.com/lueurxax/websift/internal/platform/observability"
	"github.com/lueurxax/websift/internal/process/batch"
	"github.com/lueurxax/websift/internal/process/filters"
	"github.com/lueurxax/websift/internal/storage"
)

const (
	flagLimit           = "limit"
	flagThreads         = "threads"
	flagCSVOutput       = "csv-output"
	flagJSONOutput      = "json-output"
	flagProfile         = "profile"
	flagMetricsTextfile = "metrics-textfile"
	flagStore           = "store"
)

type filterFlags struct {
	limit           int64
	threads         int
	csvOutput       string
	jsonOutput      string
	profile         bool
	metricsTextfile string
	store           bool
}

func newFilterCmd(a *app) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "filter <input>",
		Short: "Classify every record of a JSONL dump and print a summary",
		Long: `Classify every record of a line-delimited JSON dump ({"id": ..., "text": ...}).
The input may be gzip-compressed; use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&f.limit, flagLimit, 0, "stop after N documents (0 = no limit)")
	flags.IntVar(&f.threads, flagThreads, 0, "number of classification workers (0 = one per CPU)")
	flags.StringVar(&f.csvOutput, flagCSVOutput, "", "write per-record verdicts to this CSV file")
	flags.StringVar(&f.jsonOutput, flagJSONOutput, "", "write the run summary to this JSON file")
	flags.BoolVar(&f.profile, flagProfile, false, "print per-stage timings")
	flags.StringVar(&f.metricsTextfile, flagMetricsTextfile, "", "export run metrics in Prometheus text format to this file")
	flags.BoolVar(&f.store, flagStore, false, "persist the run to PostgreSQL (POSTGRES_DSN)")

	return cmd
}

// batchOptions merges explicitly set flags over the environment configuration.
func (a *app) batchOptions(cmd *cobra.Command, f filterFlags) batch.Options {
	opts := batch.Options{
		Workers:          a.cfg.Threads,
		Limit:            a.cfg.Limit,
		QueueSize:        a.cfg.QueueSize,
		CollectRecords:   f.csvOutput != "" || f.store,
		Profiling:        f.profile,
		ProgressInterval: a.cfg.ProgressInterval,
	}

	if cmd.Flags().Changed(flagThreads) {
		opts.Workers = f.threads
	}

	if cmd.Flags().Changed(flagLimit) {
		opts.Limit = f.limit
	}

	return opts
}

func (a *app) runFilter(cmd *cobra.Command, input string, f filterFlags) error {
	ctx := cmd.Context()

	profile, err := a.cfg.Profile()
	if err != nil {
		return err
	}

	classifier, err := filters.NewClassifier(profile)
	if err != nil {
		return err
	}

	coordinator, err := batch.NewCoordinator(classifier, a.batchOptions(cmd, f), &a.logger)
	if err != nil {
		return err
	}

	var store *storage.DB

	if f.store {
		store, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	src, err := reader.Open(input, reader.Options{MaxRecordBytes: a.cfg.MaxRecordBytes})
	if err != nil {
		return err
	}

	defer func() {
		if err := src.Close(); err != nil {
			a.logger.Warn().Err(err).Str(logFieldInput, input).Msg("closing input")
		}
	}()

	res, err := coordinator.Run(ctx, src)
	if err != nil {
		return err
	}

	a.logger.Debug().Str(logFieldInput, input).Int64(logFieldLines, src.Lines()).Msg("input consumed")

	if err := a.writeReports(cmd.OutOrStdout(), f, res); err != nil {
		return err
	}

	if err := a.exportMetrics(cmd, f, res); err != nil {
		return err
	}

	if store == nil {
		return nil
	}

	if err := store.SaveRun(ctx, res, storage.RunMeta{Input: input, Profile: profile}); err != nil {
		return fmt.Errorf("storing run %s: %w", res.RunID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", res.RunID)

	return nil
}

// writeReports renders the requested report files before the stdout summary,
// so a failed file write leaves stdout empty.
func (a *app) writeReports(stdout io.Writer, f filterFlags, res *batch.Result) error {
	var reporters report.Multi

	if f.csvOutput != "" {
		reporters = append(reporters, a.fileReport(f.csvOutput, "csv report written", func(w io.Writer) report.Reporter {
			return report.NewCSVReporter(w)
		}))
	}

	if f.jsonOutput != "" {
		reporters = append(reporters, a.fileReport(f.jsonOutput, "json report written", func(w io.Writer) report.Reporter {
			return report.NewJSONReporter(w, true)
		}))
	}

	return append(reporters, report.NewSummaryReporter(stdout)).Report(res)
}

func (a *app) fileReport(path, msg string, newReporter report.FileReporter) report.Reporter {
	file := report.File(path, newReporter)

	return report.ReporterFunc(func(res *batch.Result) error {
		if err := file.Report(res); err != nil {
			return err
		}

		a.logger.Info().Str(logFieldPath, path).Msg(msg)

		return nil
	})
}

func (a *app) exportMetrics(cmd *cobra.Command, f filterFlags, res *batch.Result) error {
	path := a.cfg.MetricsTextfile
	if cmd.Flags().Changed(flagMetricsTextfile) {
		path = f.metricsTextfile
	}

	if path == "" {
		return nil
	}

	metrics := observability.NewMetrics()
	metrics.ObserveRun(res.Aggregate, res.Elapsed, res.Workers)

	if err := metrics.WriteTextfile(path); err != nil {
		return err
	}

	a.logger.Info().Str(logFieldPath, path).Msg("metrics written")

	return nil
}

// openStore connects to the verdict store and brings its schema up to date.
func (a *app) openStore(ctx context.Context) (*storage.DB, error) {
	dbCfg := a.cfg.DatabaseCfg()
	if dbCfg.PostgresDSN == "" {
		return nil, fmt.Errorf("%w: POSTGRES_DSN is empty", apperrors.ErrStoreNotConfigured)
	}

	db, err := storage.NewWithOptions(ctx, dbCfg.PostgresDSN, storage.PoolOptions{
		MaxConns:          dbCfg.MaxConnections,
		MinConns:          dbCfg.MinConnections,
		MaxConnIdleTime:   dbCfg.MaxConnIdleTime,
		MaxConnLifetime:   dbCfg.MaxConnLifetime,
		HealthCheckPeriod: dbCfg.HealthCheckPeriod,
		ConnectRetries:    dbCfg.ConnectRetries,
	}, &a.logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()

		return nil, err
	}

	return db, nil
}
