package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rvcheck/internal/report"
	"rvcheck/internal/structdiff"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	MaxDiffs int
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <left> <right>",
		Short: "Compare two reports structurally",
		Long: `Parse both reports into canonical core documents and compare them
structurally. Emission order, whitespace, and formatting differences do
not count; only the structured content does.

Exits 0 when the documents are equal, 1 when they differ.

Example:
  rvcheck compare golden/1ehz.pdb.out candidate/1ehz.pdb.out --max-diffs 10`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read left report", err)
			}
			right, err := os.ReadFile(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read right report", err)
			}

			leftDoc := report.Parse(string(left))
			rightDoc := report.Parse(string(right))
			if leftDoc.Equal(rightDoc) {
				return nil
			}

			diffs := structdiff.DiffValues(leftDoc, rightDoc)
			shown := diffs
			if len(shown) > opts.MaxDiffs {
				shown = shown[:opts.MaxDiffs]
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if err := f.Lines(shown); err != nil {
				return err
			}
			if len(diffs) > len(shown) && opts.Format != "json" {
				fmt.Fprintf(cmd.OutOrStdout(), "... and %d more\n", len(diffs)-len(shown))
			}
			return NewExitError(ExitFailure, "documents differ")
		},
	}

	cmd.Flags().IntVar(&opts.MaxDiffs, "max-diffs", 50, "max diff lines to print")

	return cmd
}
