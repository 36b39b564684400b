package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Engine describes how to invoke the external analysis binary. The
// command line is Bin, then Args, then the input file name; it runs
// inside the job directory with combined output captured to a log
// file. The engine is opaque to the runner: only the artifacts it
// leaves behind (a report or a pairs document) are inspected.
type Engine struct {
	// Bin is the engine executable.
	Bin string

	// Args precede the input argument.
	Args []string

	// Env entries are appended to the inherited environment.
	Env []string
}

// Run invokes the engine on one input inside workDir, writing combined
// stdout/stderr to logPath. A non-zero exit is returned as an error
// pointing at the captured log.
func (e Engine) Run(ctx context.Context, workDir, logPath, inputArg string) error {
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("create engine log: %w", err)
	}
	defer logFile.Close()

	args := append(append([]string{}, e.Args...), inputArg)
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	cmd.Dir = workDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = append(os.Environ(), e.Env...)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("engine failed (code=%d); see %s", exitErr.ExitCode(), logPath)
		}
		return fmt.Errorf("engine failed to start: %w", err)
	}
	return nil
}
