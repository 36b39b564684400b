package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rvcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Input    string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded batch runs",
		Long: `List recent batch runs recorded in the history database, or with
--input the recorded results for one input across runs.

Example:
  rvcheck history --db runs.db
  rvcheck history --db runs.db --input /data/structures/1ehz.pdb`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open history database", err)
			}
			defer st.Close()

			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

			if opts.Input != "" {
				results, err := st.InputHistory(cmd.Context(), opts.Input, opts.Limit)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to query input history", err)
				}
				if opts.Format == "json" {
					return f.Success(results)
				}
				for _, r := range results {
					line := fmt.Sprintf("%s %s", r.Status, r.JobDir)
					if r.RegressOK != nil {
						line += fmt.Sprintf(" regress_ok=%v", *r.RegressOK)
					}
					if r.Error != "" {
						line += " error=" + r.Error
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			}

			runs, err := st.RecentRuns(cmd.Context(), opts.Limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to query runs", err)
			}
			if opts.Format == "json" {
				return f.Success(runs)
			}
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s ok=%d skipped=%d failed=%d regress_failed=%d elapsed_ms=%d\n",
					r.StartedAt.Format("2006-01-02T15:04:05Z"), r.RunID,
					r.OK, r.Skipped, r.Failed, r.RegressFailed, r.ElapsedMS)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database (required)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "show history for one input path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "max rows to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
