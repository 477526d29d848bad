// Package worker runs a fixed pool of goroutines next to an optional producer.
// It owns the shared patterns of the batch pipeline: worker-count resolution,
// context cancellation, first-error propagation and panic recovery.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	logFieldWorker = "worker"
	logFieldCount  = "workers"
)

// ErrPanic is returned when a worker or producer panics.
var ErrPanic = errors.New("worker panicked")

// ProduceFunc feeds work to the pool. It runs once, on its own goroutine.
type ProduceFunc func(ctx context.Context) error

// ProcessFunc is the body of one worker. id is in [0, Workers).
type ProcessFunc func(ctx context.Context, id int) error

// Config configures a pool run.
type Config struct {
	// Name identifies the pool for logging.
	Name string

	// Workers is the number of ProcessFunc goroutines. See Count.
	Workers int

	// Logger for the pool.
	Logger *zerolog.Logger
}

// Count resolves a requested worker count: zero means one worker per CPU.
// Negative counts are rejected by the caller's configuration layer.
func Count(requested int) int {
	if requested <= 0 {
		return runtime.NumCPU()
	}

	return requested
}

// Run starts produce (when non-nil) and cfg.Workers copies of process, then
// waits for all of them. The first error cancels the context handed to the
// others and is returned. A panic in any goroutine is converted into an
// error wrapping ErrPanic.
func Run(ctx context.Context, cfg Config, produce ProduceFunc, process ProcessFunc) error {
	logger := getLogger(cfg.Logger)
	workers := Count(cfg.Workers)

	logger.Debug().Str(logFieldWorker, cfg.Name).Int(logFieldCount, workers).Msg("starting worker pool")

	g, gctx := errgroup.WithContext(ctx)

	if produce != nil {
		g.Go(func() (err error) {
			defer recoverInto(&err, logger, cfg.Name+" producer")

			return produce(gctx)
		})
	}

	for id := range workers {
		g.Go(func() (err error) {
			defer recoverInto(&err, logger, fmt.Sprintf("%s worker %d", cfg.Name, id))

			if err := process(gctx, id); err != nil {
				return fmt.Errorf("%s worker %d: %w", cfg.Name, id, err)
			}

			return nil
		})
	}

	err := g.Wait()

	logger.Debug().Str(logFieldWorker, cfg.Name).Err(err).Msg("worker pool stopped")

	return err //nolint:wrapcheck // worker errors are wrapped above
}

// Wait blocks until duration elapses or context is canceled.
// Returns a wrapped context error if context is canceled.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("wait interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func recoverInto(err *error, logger *zerolog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("operation", operation).
			Msg("recovered from panic")

		*err = fmt.Errorf("%s: %w: %v", operation, ErrPanic, r)
	}
}

func getLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}

	return logger
}
