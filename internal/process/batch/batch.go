// Package batch applies the quality classifier to a document stream with a
// fixed worker pool. Results are independent of the worker count: every
// worker accumulates into its own partial aggregate, the partials are merged
// after all workers finish, and verdict records are re-sorted into input order.
package batch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/websift/internal/core/domain"
	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/platform/observability"
	"github.com/lueurxax/websift/internal/platform/worker"
	"github.com/lueurxax/websift/internal/process/filters"
)

const (
	DefaultQueueSize = 1024

	logFieldRunID    = "run_id"
	logFieldWorkers  = "workers"
	logFieldDocs     = "docs"
	logFieldKept     = "kept"
	logFieldDropped  = "dropped"
	logFieldPosition = "position"
	logFieldRecordID = "record_id"
	logFieldElapsed  = "elapsed"
	logFieldBytes    = "bytes_read"
)

// Source yields documents one at a time. Next returns io.EOF once the stream
// is exhausted. Any other error is treated as systemic and aborts the run;
// per-record decode failures must instead be reported through Document.Err.
type Source interface {
	Next(ctx context.Context) (domain.Document, error)
}

// byteCounter is implemented by sources that can report input progress in bytes.
type byteCounter interface {
	BytesRead() int64
}

// Options configures a Coordinator.
type Options struct {
	// Workers is the classification pool size. Zero means one per CPU.
	Workers int
	// Limit caps the number of documents pulled from the source. Zero means unlimited.
	Limit int64
	// QueueSize bounds the producer-to-worker channel. Zero selects DefaultQueueSize.
	QueueSize int
	// CollectRecords keeps one VerdictRecord per document in the Result.
	CollectRecords bool
	// Profiling enables per-stage timing.
	Profiling bool
	// ProgressInterval throttles progress log lines. Zero disables them.
	ProgressInterval time.Duration
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     uuid.UUID
	Aggregate domain.Aggregate
	// Records is sorted by Position. Empty unless Options.CollectRecords is set.
	Records []domain.VerdictRecord
	Elapsed time.Duration
	Workers int
	Stages  []observability.StageStat
}

// DocsPerSecond returns the document throughput of the run.
func (r *Result) DocsPerSecond() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}

	return float64(r.Aggregate.Total) / secs
}

// MBPerSecond returns the text throughput of the run in MiB per second.
func (r *Result) MBPerSecond() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}

	return float64(r.Aggregate.Bytes) / 1024 / 1024 / secs
}

type Coordinator struct {
	classifier *filters.Classifier
	opts       Options
	logger     *zerolog.Logger
}

// partial is the state owned by exactly one worker goroutine.
type partial struct {
	agg      domain.Aggregate
	records  []domain.VerdictRecord
	profiler *observability.Profiler
}

func NewCoordinator(classifier *filters.Classifier, opts Options, logger *zerolog.Logger) (*Coordinator, error) {
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrInvalidWorkerCount, opts.Workers)
	}

	if opts.Limit < 0 {
		return nil, fmt.Errorf("%w: limit %d", apperrors.ErrInvalidLimit, opts.Limit)
	}

	if opts.QueueSize < 0 {
		return nil, fmt.Errorf("%w: queue size %d", apperrors.ErrInvalidLimit, opts.QueueSize)
	}

	if opts.QueueSize == 0 {
		opts.QueueSize = DefaultQueueSize
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Coordinator{
		classifier: classifier,
		opts:       opts,
		logger:     logger,
	}, nil
}

// RunDocuments classifies an in-memory document slice. Positions are
// reassigned from the slice order.
func (c *Coordinator) RunDocuments(ctx context.Context, docs []domain.Document) (*Result, error) {
	return c.Run(ctx, &sliceSource{docs: docs})
}

// Run drains src through the worker pool. It returns no Result when the
// source fails or ctx is canceled.
func (c *Coordinator) Run(ctx context.Context, src Source) (*Result, error) {
	runID := uuid.New()
	workers := worker.Count(c.opts.Workers)
	logger := c.logger.With().Str(logFieldRunID, runID.String()).Logger()

	logger.Info().Int(logFieldWorkers, workers).Int64("limit", c.opts.Limit).Msg("batch run started")

	started := time.Now()
	queue := make(chan domain.Document, c.opts.QueueSize)
	partials := make([]partial, workers)
	readProfiler := observability.NewProfiler(c.opts.Profiling)

	for i := range partials {
		partials[i].profiler = observability.NewProfiler(c.opts.Profiling)
	}

	produce := func(ctx context.Context) error {
		defer close(queue)

		return c.produce(ctx, src, queue, readProfiler, &logger)
	}

	process := func(_ context.Context, id int) error {
		c.consume(queue, &partials[id])

		return nil
	}

	err := worker.Run(ctx, worker.Config{Name: "batch", Workers: workers, Logger: &logger}, produce, process)
	if err != nil {
		logger.Error().Err(err).Msg("batch run failed")

		return nil, fmt.Errorf("batch run %s: %w", runID, err)
	}

	// A cancel that lands after the last document still fails the run.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch run %s: %w", runID, err)
	}

	result := c.merge(partials, readProfiler)
	result.RunID = runID
	result.Workers = workers
	result.Elapsed = time.Since(started)

	logger.Info().
		Int64(logFieldDocs, result.Aggregate.Total).
		Int64(logFieldKept, result.Aggregate.Kept).
		Int64(logFieldDropped, result.Aggregate.Dropped).
		Dur(logFieldElapsed, result.Elapsed).
		Msg("batch run finished")

	return result, nil
}

// produce is the only reader of src. It assigns positions and enforces the
// limit, so both are independent of the worker count.
func (c *Coordinator) produce(
	ctx context.Context,
	src Source,
	queue chan<- domain.Document,
	profiler *observability.Profiler,
	logger *zerolog.Logger,
) error {
	progress := rate.Sometimes{Interval: c.opts.ProgressInterval}

	var pos int64

	for c.opts.Limit == 0 || pos < c.opts.Limit {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reading source: %w", err)
		}

		stop := profiler.Start(observability.StageRead)
		doc, err := src.Next(ctx)
		stop()

		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading source at position %d: %w", pos, err)
		}

		doc.Position = pos
		pos++

		select {
		case queue <- doc:
		case <-ctx.Done():
			return fmt.Errorf("reading source: %w", ctx.Err())
		}

		if c.opts.ProgressInterval > 0 {
			progress.Do(func() {
				event := logger.Info().Int64(logFieldDocs, pos)
				if bc, ok := src.(byteCounter); ok {
					event = event.Int64(logFieldBytes, bc.BytesRead())
				}

				event.Msg("batch progress")
			})
		}
	}

	logger.Debug().Int64("limit", c.opts.Limit).Msg("document limit reached")

	return nil
}

// consume classifies documents until the queue is closed. Documents already
// queued when the producer stops are still classified.
func (c *Coordinator) consume(queue <-chan domain.Document, p *partial) {
	for doc := range queue {
		verdict, size := c.classify(doc, p.profiler)

		p.agg.Add(verdict, size)

		if c.opts.CollectRecords {
			p.records = append(p.records, domain.VerdictRecord{
				Position: doc.Position,
				RecordID: doc.ID,
				Verdict:  verdict,
			})
		}
	}
}

func (c *Coordinator) classify(doc domain.Document, profiler *observability.Profiler) (domain.Verdict, int) {
	if doc.Err != nil {
		c.logger.Debug().
			Err(doc.Err).
			Int64(logFieldPosition, doc.Position).
			Str(logFieldRecordID, doc.ID).
			Msg("ingestion error")

		return domain.Rejected(domain.ReasonIngestionError), 0
	}

	stop := profiler.Start(observability.StageClassify)
	verdict := c.classifier.Classify(doc.Text)
	stop()

	return verdict, len(doc.Text)
}

func (c *Coordinator) merge(partials []partial, readProfiler *observability.Profiler) *Result {
	mergeStarted := time.Now()

	result := &Result{}
	stages := observability.NewProfiler(c.opts.Profiling)
	stages.Merge(readProfiler)

	var n int
	for i := range partials {
		n += len(partials[i].records)
	}

	if c.opts.CollectRecords {
		result.Records = make([]domain.VerdictRecord, 0, n)
	}

	for i := range partials {
		result.Aggregate.Merge(partials[i].agg)
		result.Records = append(result.Records, partials[i].records...)
		stages.Merge(partials[i].profiler)
	}

	slices.SortFunc(result.Records, func(a, b domain.VerdictRecord) int {
		return cmp.Compare(a.Position, b.Position)
	})

	stages.Observe(observability.StageMerge, time.Since(mergeStarted))
	result.Stages = stages.Stats()

	return result
}

type sliceSource struct {
	docs []domain.Document
	next int
}

func (s *sliceSource) Next(_ context.Context) (domain.Document, error) {
	if s.next >= len(s.docs) {
		return domain.Document{}, io.EOF
	}

	doc := s.docs[s.next]
	s.next++

	return doc, nil
}
