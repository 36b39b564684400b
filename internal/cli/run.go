package cli

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"rvcheck/internal/batch"
	"rvcheck/internal/golden"
	"rvcheck/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Lists      []string
	OutDir     string
	Workers    int
	EngineBin  string
	EngineArgs []string
	EngineEnv  []string
	JobIDMode  string
	Overwrite  bool
	Regress    bool
	Manifest   string
	MaxDiffs   int
	KeepGoing  bool
	Config     string
	Database   string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <inputs...>",
		Short: "Run the engine on a batch of inputs and verify against baselines",
		Long: `Run the external analysis engine once per input on a fixed-size
worker pool. Each job gets its own directory under --out-dir, named by
an identifier derived from the input path. The engine's report (or the
pairs document it wrote directly) is parsed into a canonical document;
with --regress it is compared against the frozen baseline resolved for
that input.

Inputs may be files, directories (walked recursively), globs, or list
files. A summary.json is always written, even when jobs fail.

Example:
  rvcheck run test/*.pdb --out-dir out --engine-bin bin/rnaview --regress`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Lists, "list", nil, "a file with one input path per line (repeatable)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "output directory (required)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (default: half the CPUs)")
	cmd.Flags().StringVar(&opts.EngineBin, "engine-bin", "", "path to the analysis engine binary")
	cmd.Flags().StringArrayVar(&opts.EngineArgs, "engine-arg", nil, "extra engine argument, placed before the input (repeatable)")
	cmd.Flags().StringVar(&opts.JobIDMode, "job-id-mode", string(batch.ModeStemHash), "job id derivation: stem|name|stem-hash|name-hash")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "overwrite existing job outputs")
	cmd.Flags().BoolVar(&opts.Regress, "regress", false, "compare against the frozen baseline manifest")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "path to manifest.json (default: test/golden_core/manifest.json)")
	cmd.Flags().IntVar(&opts.MaxDiffs, "max-diffs", 50, "max diff lines to record on mismatch")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "keep running even if a mismatch is found")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML config file with run defaults")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in a history database")
	_ = cmd.MarkFlagRequired("out-dir")

	return cmd
}

func runBatch(cmd *cobra.Command, opts *RunOptions, args []string) error {
	if opts.Config != "" {
		cfg, err := LoadRunConfig(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		applyRunConfig(opts, cfg)
	}

	if opts.EngineBin == "" {
		return NewExitError(ExitCommandError, "missing engine binary: pass --engine-bin or set engine_bin in the config")
	}
	if _, err := os.Stat(opts.EngineBin); err != nil {
		return WrapExitError(ExitCommandError, "engine binary not found", err)
	}

	mode, err := batch.ParseJobIDMode(opts.JobIDMode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid job-id-mode", err)
	}

	inputs, err := batch.CollectInputs(args, opts.Lists)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect inputs", err)
	}
	if len(inputs) == 0 {
		return NewExitError(ExitCommandError, "no inputs")
	}

	var index *golden.Index
	if opts.Regress {
		manifestPath := opts.Manifest
		if manifestPath == "" {
			manifestPath = "test/golden_core/manifest.json"
		}
		m, err := golden.LoadManifest(manifestPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load manifest", err)
		}
		base, err := os.Getwd()
		if err != nil {
			return WrapExitError(ExitInternal, "failed to resolve working directory", err)
		}
		index = golden.BuildIndex(m, base)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}

	slog.Info("batch starting", "inputs", len(inputs), "workers", workers, "regress", opts.Regress)
	started := time.Now()

	summary, err := batch.Run(cmd.Context(), inputs, batch.Options{
		OutDir:    opts.OutDir,
		Workers:   workers,
		Engine:    batch.Engine{Bin: opts.EngineBin, Args: opts.EngineArgs, Env: opts.EngineEnv},
		JobIDMode: mode,
		Overwrite: opts.Overwrite,
		Index:     index,
		MaxDiffs:  opts.MaxDiffs,
		KeepGoing: opts.KeepGoing,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "batch rejected", err)
	}

	summaryPath, err := batch.WriteSummary(opts.OutDir, summary)
	if err != nil {
		return WrapExitError(ExitInternal, "failed to write summary", err)
	}
	slog.Info("batch finished",
		"ok", summary.Counts.OK,
		"skipped", summary.Counts.Skipped,
		"failed", summary.Counts.Failed,
		"regress_failed", summary.Counts.RegressFailed,
		"summary", summaryPath)

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing history database", "error", closeErr)
			}
		}()
		if err := st.RecordRun(cmd.Context(), started, summary); err != nil {
			return WrapExitError(ExitInternal, "failed to record run", err)
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		if err := f.Success(summary); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "ok=%d skipped=%d failed=%d regress_failed=%d elapsed_ms=%d\n",
			summary.Counts.OK, summary.Counts.Skipped, summary.Counts.Failed,
			summary.Counts.RegressFailed, summary.ElapsedMS)
		for _, r := range summary.Results {
			if r.Status == batch.StatusFailed {
				fmt.Fprintf(cmd.OutOrStdout(), "failed %s: %s\n", r.Input, r.Error)
			}
		}
	}

	if summary.Failed() {
		return NewExitError(ExitFailure, "batch had failures")
	}
	return nil
}

// applyRunConfig fills options the command line left at zero defaults.
func applyRunConfig(opts *RunOptions, cfg RunConfig) {
	if opts.Workers == 0 && cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	if opts.EngineBin == "" {
		opts.EngineBin = cfg.EngineBin
	}
	if len(opts.EngineArgs) == 0 {
		opts.EngineArgs = cfg.EngineArgs
	}
	if len(opts.EngineEnv) == 0 {
		opts.EngineEnv = cfg.EngineEnv
	}
	if opts.JobIDMode == string(batch.ModeStemHash) && cfg.JobIDMode != "" {
		opts.JobIDMode = cfg.JobIDMode
	}
	if opts.Manifest == "" {
		opts.Manifest = cfg.Manifest
	}
	if opts.MaxDiffs == 50 && cfg.MaxDiffs > 0 {
		opts.MaxDiffs = cfg.MaxDiffs
	}
	if opts.Database == "" {
		opts.Database = cfg.Database
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		return 1
	}
	return n
}
