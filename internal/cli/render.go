package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rvcheck/internal/core"
	"rvcheck/internal/report"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output string
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <pairs.json>",
		Short: "Render a pairs document back to report text",
		Long: `Read a pairs JSON artifact (or a bare core JSON artifact) and
render its core document in the legacy report grammar.

A pair record lacking its LW classifier cannot be rendered and fails
the whole document.

Example:
  rvcheck render out/1ehz__a1b2c3d4/pairs.json -o rebuilt.out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read pairs document", err)
			}

			doc, err := core.DecodeAnyDocument(data)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to decode pairs document", err)
			}

			text, err := report.Render(doc)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to render document", err)
			}

			if opts.Output != "" {
				if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write output", err)
				}
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write report text to a file (default: stdout)")

	return cmd
}
