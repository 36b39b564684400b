package batch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rvcheck/internal/core"
	"rvcheck/internal/golden"
	"rvcheck/internal/report"
	"rvcheck/internal/structdiff"
)

// Per-job artifact names inside the job directory.
const (
	pairsArtifact  = "pairs.json"
	reportArtifact = "engine.out"
	logArtifact    = "engine.log"
)

// Status classifies a finished job.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Options configures a batch run.
type Options struct {
	// OutDir is the root under which each job gets its own directory.
	OutDir string

	// Workers is the fixed worker pool size. Values below one run
	// sequentially.
	Workers int

	// Engine is the external analysis command.
	Engine Engine

	// JobIDMode selects job directory naming. Defaults to ModeStemHash.
	JobIDMode JobIDMode

	// Overwrite reruns jobs whose artifacts already exist.
	Overwrite bool

	// Index enables baseline verification when non-nil.
	Index *golden.Index

	// MaxDiffs truncates the descriptors recorded per mismatch.
	MaxDiffs int

	// KeepGoing lets a job finish ok despite a baseline mismatch; the
	// mismatch is still recorded on the result and in the counts.
	KeepGoing bool

	// RunID labels the run in summaries and the history store.
	// Defaults to a fresh UUID.
	RunID string
}

// Result is the outcome of one job.
type Result struct {
	Input        string   `json:"input"`
	JobID        string   `json:"job_id"`
	Status       Status   `json:"status"`
	JobDir       string   `json:"job_dir"`
	PairsJSON    string   `json:"pairs_json,omitempty"`
	EngineOut    string   `json:"engine_out,omitempty"`
	Error        string   `json:"error,omitempty"`
	RegressOK    *bool    `json:"regress_ok,omitempty"`
	RegressDiffs []string `json:"regress_diffs,omitempty"`
	ElapsedMS    int64    `json:"elapsed_ms"`
}

// Counts aggregates job outcomes.
type Counts struct {
	OK            int `json:"ok"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
	RegressFailed int `json:"regress_failed"`
}

// SummarySchemaVersion is the schema version written into summaries.
const SummarySchemaVersion = 1

// Summary is the machine-readable record of a batch run. Results are
// sorted by (status, job id, input) so the artifact is reproducible
// regardless of completion order.
type Summary struct {
	SchemaVersion int      `json:"schema_version"`
	RunID         string   `json:"run_id"`
	Counts        Counts   `json:"counts"`
	ElapsedMS     int64    `json:"elapsed_ms"`
	Results       []Result `json:"results"`
}

// SummaryName is the summary file name inside the output directory.
const SummaryName = "summary.json"

// Failed reports whether the run should surface a non-zero exit: any
// failed job, or any verified job that mismatched its baseline.
func (s Summary) Failed() bool {
	return s.Counts.Failed > 0 || s.Counts.RegressFailed > 0
}

// Run executes one job per input on a fixed-size worker pool and
// aggregates the outcomes. Job identifiers are derived up front; two
// distinct inputs mapping to the same identifier reject the whole run
// before any engine is launched, since both jobs would write the same
// directory.
func Run(ctx context.Context, inputs []string, opts Options) (Summary, error) {
	if opts.JobIDMode == "" {
		opts.JobIDMode = ModeStemHash
	}
	if opts.MaxDiffs <= 0 {
		opts.MaxDiffs = 50
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	jobIDs := make([]string, len(inputs))
	firstInput := map[string]string{}
	for i, input := range inputs {
		id, err := JobID(input, opts.JobIDMode)
		if err != nil {
			return Summary{}, err
		}
		if prev, ok := firstInput[id]; ok {
			return Summary{}, fmt.Errorf("job id collision: %q maps both %s and %s; use a hashed job-id-mode", id, prev, input)
		}
		firstInput[id] = input
		jobIDs[i] = id
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	started := time.Now()

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(inputs))
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			results[i] = runJob(ctx, input, jobIDs[i], opts)
			return nil
		})
	}
	_ = g.Wait() // job errors never escape the per-job result

	sort.Slice(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status < results[j].Status
		}
		if results[i].JobID != results[j].JobID {
			return results[i].JobID < results[j].JobID
		}
		return results[i].Input < results[j].Input
	})

	summary := Summary{
		SchemaVersion: SummarySchemaVersion,
		RunID:         opts.RunID,
		ElapsedMS:     time.Since(started).Milliseconds(),
		Results:       results,
	}
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			summary.Counts.OK++
		case StatusSkipped:
			summary.Counts.Skipped++
		case StatusFailed:
			summary.Counts.Failed++
		}
		if r.RegressOK != nil && !*r.RegressOK {
			summary.Counts.RegressFailed++
		}
	}
	return summary, nil
}

// runJob processes one input to completion. Every failure mode,
// including a panic below this frame, is converted into a failed
// result so a bad input cannot abort the batch.
func runJob(ctx context.Context, input, jobID string, opts Options) (res Result) {
	started := time.Now()
	jobDir := filepath.Join(opts.OutDir, jobID)

	res = Result{Input: input, JobID: jobID, JobDir: jobDir}
	fail := func(format string, args ...any) Result {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf(format, args...)
		res.ElapsedMS = time.Since(started).Milliseconds()
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res = fail("panic: %v", r)
		}
	}()

	pairsPath := filepath.Join(jobDir, pairsArtifact)
	reportPath := filepath.Join(jobDir, reportArtifact)
	logPath := filepath.Join(jobDir, logArtifact)

	if !opts.Overwrite {
		if _, err := os.Stat(pairsPath); err == nil {
			res.Status = StatusSkipped
			res.PairsJSON = pairsPath
			return res
		}
	}

	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fail("create job dir: %v", err)
	}
	if opts.Overwrite {
		os.Remove(pairsPath)
	}

	inputArg := filepath.Base(input)
	if err := copyFile(input, filepath.Join(jobDir, inputArg)); err != nil {
		return fail("prepare input copy: %v", err)
	}

	slog.Debug("engine start", "job", jobID, "input", input)
	if err := opts.Engine.Run(ctx, jobDir, logPath, inputArg); err != nil {
		return fail("%v", err)
	}

	doc, err := collectCandidate(jobDir, inputArg, pairsPath, reportPath, input, opts.Engine.Bin)
	if err != nil {
		return fail("%v", err)
	}
	res.PairsJSON = pairsPath
	if _, statErr := os.Stat(reportPath); statErr == nil {
		res.EngineOut = reportPath
	}

	if opts.Index != nil {
		ref, found := opts.Index.Resolve(input)
		if found {
			ok, diffs, err := verifyAgainstBaseline(doc, ref, opts.MaxDiffs)
			if err != nil {
				return fail("%v", err)
			}
			res.RegressOK = &ok
			res.RegressDiffs = diffs
			if !ok && !opts.KeepGoing {
				return fail("baseline mismatch")
			}
		}
		// Unresolvable baseline: RegressOK stays unset, the job is
		// unverifiable rather than failed.
	}

	res.Status = StatusOK
	res.ElapsedMS = time.Since(started).Milliseconds()
	return res
}

// collectCandidate obtains the candidate document for a finished
// engine invocation: either the pairs document the engine wrote
// directly, or the report it produced, parsed and re-projected. The
// canonical pairs artifact always ends up at pairsPath.
func collectCandidate(jobDir, inputArg, pairsPath, reportPath, input, engineBin string) (core.CoreDocument, error) {
	if data, err := os.ReadFile(pairsPath); err == nil {
		pd, err := core.DecodePairsDocument(data)
		if err != nil {
			return core.CoreDocument{}, fmt.Errorf("engine wrote invalid pairs document: %w", err)
		}
		return pd.Core, nil
	}

	produced := filepath.Join(jobDir, inputArg+".out")
	if _, err := os.Stat(produced); err != nil {
		found, err := findReport(jobDir)
		if err != nil {
			return core.CoreDocument{}, err
		}
		if found == "" {
			return core.CoreDocument{}, fmt.Errorf("engine produced no report; see %s", filepath.Join(jobDir, logArtifact))
		}
		produced = found
	}

	if err := copyFile(produced, reportPath); err != nil {
		return core.CoreDocument{}, fmt.Errorf("capture report: %w", err)
	}

	text, err := os.ReadFile(reportPath)
	if err != nil {
		return core.CoreDocument{}, err
	}
	doc := report.Parse(string(text))

	pd := core.NewPairsDocument(doc, &core.PairsSource{Path: input, Format: "out"},
		map[string]any{"engine": engineBin})
	data, err := pd.EncodeCanonical()
	if err != nil {
		return core.CoreDocument{}, err
	}
	if err := os.WriteFile(pairsPath, data, 0o644); err != nil {
		return core.CoreDocument{}, err
	}
	return doc, nil
}

// findReport locates a *.out artifact anywhere under the job
// directory, skipping the runner's own stable copy.
func findReport(jobDir string) (string, error) {
	var candidates []string
	err := filepath.WalkDir(jobDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".out") || d.Name() == reportArtifact {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// verifyAgainstBaseline compares a candidate document with the frozen
// core it resolved to.
func verifyAgainstBaseline(candidate core.CoreDocument, ref golden.EntryRef, maxDiffs int) (bool, []string, error) {
	data, err := os.ReadFile(ref.CorePath)
	if err != nil {
		return false, nil, fmt.Errorf("read baseline core: %w", err)
	}
	goldenDoc, err := core.DecodeCoreDocument(data)
	if err != nil {
		return false, nil, fmt.Errorf("%s: %w", ref.CorePath, err)
	}

	if candidate.Equal(goldenDoc) {
		return true, nil, nil
	}
	diffs := structdiff.DiffValues(goldenDoc, candidate)
	if len(diffs) > maxDiffs {
		diffs = diffs[:maxDiffs]
	}
	return false, diffs, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
