package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rvcheck/internal/report"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <report>",
		Short: "Print canonical core JSON for a report",
		Long: `Parse a legacy analysis report and print its canonical core
document (base pairs, multiplets, summary statistics) as compact JSON.

Malformed rows never abort extraction; they surface as kind=unknown
records carrying the original line text.

Example:
  rvcheck extract test/1ehz.pdb.out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read report", err)
			}

			doc := report.Parse(string(text))
			data, err := doc.EncodeCanonical()
			if err != nil {
				return WrapExitError(ExitInternal, "failed to encode core document", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	return cmd
}
