package cli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/process/filters"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify the text read from standard input",
		Long:  "Reads one document from standard input and prints \"keep\\t\" or \"reject\\t<reason>\".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClassify(cmd)
		},
	}
}

func (a *app) runClassify(cmd *cobra.Command) error {
	profile, err := a.cfg.Profile()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("%w: stdin: %w", apperrors.ErrInputRead, err)
	}

	if !utf8.Valid(data) {
		return fmt.Errorf("stdin: %w", apperrors.ErrInvalidUTF8)
	}

	verdict := filters.Classify(string(data), profile)

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", verdict.Status(), verdict.Reason); err != nil {
		return fmt.Errorf("writing verdict: %w", err)
	}

	return nil
}
