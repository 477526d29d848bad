// Package cli wires configuration, logging and the batch pipeline into the
// websift command tree.
package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/websift/internal/platform/config"
)

const (
	logFieldCommand = "command"
	logFieldInput   = "input"
	logFieldLines   = "lines"
	logFieldPath    = "path"
)

// app carries the state shared by every subcommand once the root pre-run hook
// has loaded it.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd builds the websift command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "websift",
		Short:         "Heuristic quality filter for extracted web text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.AddCommand(
		newFilterCmd(a),
		newClassifyCmd(a),
		newStatsCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cfg, cmd.ErrOrStderr()).
		With().Str(logFieldCommand, cmd.Name()).Logger()

	return nil
}

// newLogger writes to w, which is stderr in production so stdout stays free
// for reports.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	var logger zerolog.Logger

	if cfg.IsLocal() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	return logger.Level(logLevel(cfg.LogLevel))
}

func logLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
