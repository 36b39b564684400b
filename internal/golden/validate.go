package golden

import (
	"fmt"
	"os"

	"rvcheck/internal/core"
	"rvcheck/internal/report"
	"rvcheck/internal/structdiff"
)

// Mismatch is one baseline that failed round-trip validation.
type Mismatch struct {
	Out   string   `json:"out"`
	Diffs []string `json:"diffs"`
}

// ValidateOptions configures a validation pass.
type ValidateOptions struct {
	// BaseDir resolves the manifest's relative paths.
	BaseDir string

	// MaxDiffs truncates the descriptors recorded per mismatch.
	MaxDiffs int

	// KeepGoing checks every entry instead of stopping at the first
	// mismatch.
	KeepGoing bool
}

// Validate checks every frozen baseline: the stored core is rendered
// back to report text, reparsed, and structurally compared against the
// stored core. A mismatch means the codec no longer round-trips the
// baseline. I/O or decode failures on an entry are reported as errors
// since a broken baseline tree is not a verification result.
func Validate(m Manifest, opts ValidateOptions) ([]Mismatch, error) {
	maxDiffs := opts.MaxDiffs
	if maxDiffs <= 0 {
		maxDiffs = 20
	}

	var failed []Mismatch
	for _, entry := range m.Entries {
		corePath := absPath(opts.BaseDir, entry.CoreJSON)
		data, err := os.ReadFile(corePath)
		if err != nil {
			return failed, fmt.Errorf("read frozen core: %w", err)
		}

		goldenDoc, err := core.DecodeCoreDocument(data)
		if err != nil {
			return failed, fmt.Errorf("%s: %w", corePath, err)
		}

		text, err := report.Render(goldenDoc)
		if err != nil {
			return failed, fmt.Errorf("render %s: %w", entry.Out, err)
		}
		candidate := report.Parse(text)

		if candidate.Equal(goldenDoc) {
			continue
		}

		diffs := structdiff.DiffValues(goldenDoc, candidate)
		if len(diffs) > maxDiffs {
			diffs = diffs[:maxDiffs]
		}
		failed = append(failed, Mismatch{Out: entry.Out, Diffs: diffs})
		if !opts.KeepGoing {
			break
		}
	}

	return failed, nil
}
