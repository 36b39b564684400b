package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"rvcheck/internal/golden"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Manifest  string
	MaxDiffs  int
	KeepGoing bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate frozen baselines round-trip through the codec",
		Long: `For every frozen baseline, render the stored core back to report
text, reparse it, and compare the result structurally against the
stored core. A mismatch means the codec no longer round-trips that
baseline.

Example:
  rvcheck validate --manifest test/golden_core/manifest.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath := opts.Manifest
			if manifestPath == "" {
				manifestPath = filepath.Join("test", "golden_core", golden.ManifestName)
			}

			m, err := golden.LoadManifest(manifestPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load manifest", err)
			}

			failed, err := golden.Validate(m, golden.ValidateOptions{
				MaxDiffs:  opts.MaxDiffs,
				KeepGoing: opts.KeepGoing,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "validation aborted", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if len(failed) == 0 {
				if opts.Format == "json" {
					return f.Success(map[string]any{"ok": true, "entries": len(m.Entries)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok entries=%d\n", len(m.Entries))
				return nil
			}

			if opts.Format == "json" {
				if err := f.Success(failed); err != nil {
					return err
				}
			} else {
				for _, mm := range failed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: core mismatch\n", mm.Out)
					for _, d := range mm.Diffs {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", d)
					}
				}
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d baselines failed round-trip", len(failed)))
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "path to manifest.json (default: test/golden_core/manifest.json)")
	cmd.Flags().IntVar(&opts.MaxDiffs, "max-diffs", 20, "max diff lines per baseline")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "report all mismatches")

	return cmd
}
