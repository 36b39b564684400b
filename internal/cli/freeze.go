package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rvcheck/internal/golden"
)

// FreezeOptions holds flags for the freeze command.
type FreezeOptions struct {
	*RootOptions
	OutDir            string
	ExcludeSuffix     []string
	AllowUnknown      bool
	AllowMissingStats bool
	KeepGoing         bool
	DryRun            bool
}

// NewFreezeCommand creates the freeze command.
func NewFreezeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FreezeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "freeze <root>",
		Short: "Freeze a tree of reports into golden baselines",
		Long: `Scan a directory recursively for analysis reports, extract each
report's canonical core, and write the *.core.json artifacts plus a
manifest. The frozen tree becomes the reference for later regression
runs.

Reports with rows that failed the base-pair grammar, or with an
incomplete stats section, are rejected unless explicitly allowed.

Example:
  rvcheck freeze test --out-dir test/golden_core --keep-going`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := golden.Freeze(golden.FreezeOptions{
				Root:              args[0],
				OutDir:            opts.OutDir,
				ExcludeSuffix:     opts.ExcludeSuffix,
				AllowUnknown:      opts.AllowUnknown,
				AllowMissingStats: opts.AllowMissingStats,
				KeepGoing:         opts.KeepGoing,
				DryRun:            opts.DryRun,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "freeze failed", err)
			}

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				if err := f.Success(rep); err != nil {
					return err
				}
			} else {
				for _, e := range rep.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "frozen=%d out_dir=%s\n", rep.Frozen, rep.OutDir)
			}

			if len(rep.Errors) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d reports failed validation", len(rep.Errors)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "where to write *.core.json and manifest.json (default: <root>/golden_core)")
	cmd.Flags().StringArrayVar(&opts.ExcludeSuffix, "exclude-suffix", golden.DefaultExcludeSuffixes, "skip reports whose name ends with this suffix (repeatable)")
	cmd.Flags().BoolVar(&opts.AllowUnknown, "allow-unknown", false, "allow rows that failed the base-pair grammar")
	cmd.Flags().BoolVar(&opts.AllowMissingStats, "allow-missing-stats", false, "allow reports without a complete stats section")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "record every failure instead of stopping at the first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list candidates without writing artifacts")

	return cmd
}
