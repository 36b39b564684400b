package golden

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rvcheck/internal/core"
	"rvcheck/internal/report"
)

// DefaultExcludeSuffixes skips derived report files that shadow their
// primary report.
var DefaultExcludeSuffixes = []string{"_sort.out", "_patt.out", ".out.out"}

// FreezeOptions configures a freeze pass.
type FreezeOptions struct {
	// Root is the directory scanned recursively for *.out reports.
	Root string

	// OutDir receives *.core.json artifacts and the manifest.
	// Defaults to <Root>/golden_core.
	OutDir string

	// BaseDir anchors the relative paths recorded in the manifest.
	// Defaults to the current working directory.
	BaseDir string

	// ExcludeSuffix skips reports whose file name ends with any of the
	// given suffixes. Defaults to DefaultExcludeSuffixes.
	ExcludeSuffix []string

	// AllowUnknown accepts reports containing rows that failed the
	// base-pair grammar.
	AllowUnknown bool

	// AllowMissingStats accepts reports without a complete stats
	// section.
	AllowMissingStats bool

	// KeepGoing records every data-quality failure instead of stopping
	// at the first.
	KeepGoing bool

	// DryRun lists candidates without writing any artifact.
	DryRun bool
}

// FreezeReport summarizes a freeze pass.
type FreezeReport struct {
	Frozen  int      `json:"frozen"`
	OutDir  string   `json:"out_dir"`
	Entries []Entry  `json:"entries"`
	Errors  []string `json:"errors,omitempty"`
}

// Freeze extracts the canonical core of every qualifying report under
// opts.Root, writes the artifacts and the manifest, and reports
// data-quality failures. Failures are collected per report; only I/O
// errors on the output side abort the pass.
func Freeze(opts FreezeOptions) (FreezeReport, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return FreezeReport{}, fmt.Errorf("resolve root: %w", err)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(root, "golden_core")
	}
	if outDir, err = filepath.Abs(outDir); err != nil {
		return FreezeReport{}, fmt.Errorf("resolve out dir: %w", err)
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			return FreezeReport{}, err
		}
	}

	exclude := opts.ExcludeSuffix
	if exclude == nil {
		exclude = DefaultExcludeSuffixes
	}

	candidates, err := collectReports(root, exclude)
	if err != nil {
		return FreezeReport{}, err
	}

	rep := FreezeReport{OutDir: outDir}
	if !opts.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return rep, fmt.Errorf("create out dir: %w", err)
		}
	}

	for _, outFile := range candidates {
		text, err := os.ReadFile(outFile)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: %v", outFile, err))
			if !opts.KeepGoing {
				break
			}
			continue
		}

		doc := report.Parse(string(text))
		unknown := countUnknown(doc)
		if unknown > 0 && !opts.AllowUnknown {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: unknown base-pair lines (%d)", outFile, unknown))
			if !opts.KeepGoing {
				break
			}
			continue
		}
		if missing := missingStatsFields(doc.Stats); len(missing) > 0 && !opts.AllowMissingStats {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: missing stats fields %v", outFile, missing))
			if !opts.KeepGoing {
				break
			}
			continue
		}

		relOut, err := filepath.Rel(root, outFile)
		if err != nil {
			return rep, err
		}
		corePath := filepath.Join(outDir, strings.TrimSuffix(relOut, ".out")+CoreSuffix)

		slog.Debug("freezing report", "out", outFile, "core", corePath)

		if !opts.DryRun {
			data, err := doc.EncodeCanonical()
			if err != nil {
				return rep, err
			}
			if err := os.MkdirAll(filepath.Dir(corePath), 0o755); err != nil {
				return rep, err
			}
			if err := os.WriteFile(corePath, data, 0o644); err != nil {
				return rep, err
			}
		}

		rep.Entries = append(rep.Entries, Entry{
			Out:      relPath(baseDir, outFile),
			CoreJSON: relPath(baseDir, corePath),
			Counts: EntryCounts{
				BasePairs:        len(doc.BasePairs),
				Multiplets:       len(doc.Multiplets),
				UnknownBasePairs: unknown,
			},
		})
	}

	sortEntries(rep.Entries)
	rep.Frozen = len(rep.Entries)

	if !opts.DryRun {
		m := Manifest{
			SchemaVersion: ManifestSchemaVersion,
			Root:          relPath(baseDir, root),
			ExcludeSuffix: exclude,
			Entries:       rep.Entries,
		}
		if err := m.Write(filepath.Join(outDir, ManifestName)); err != nil {
			return rep, err
		}
	}

	return rep, nil
}

// collectReports walks root for *.out files, applying the exclusion
// suffixes and requiring a base-pair block so that unrelated .out
// files never enter the baseline.
func collectReports(root string, exclude []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".out") {
			return nil
		}
		for _, sfx := range exclude {
			if strings.HasSuffix(d.Name(), sfx) {
				return nil
			}
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !report.HasBasePairBlock(string(text)) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

func countUnknown(doc core.CoreDocument) int {
	n := 0
	for _, bp := range doc.BasePairs {
		if bp.Kind == core.KindUnknown {
			n++
		}
	}
	return n
}

// missingStatsFields names the stats keys a complete report must carry.
func missingStatsFields(s core.Stats) []string {
	var missing []string
	if s.TotalPairs == nil {
		missing = append(missing, "total_pairs")
	}
	if s.TotalBases == nil {
		missing = append(missing, "total_bases")
	}
	if len(s.PairTypeCounts) == 0 {
		missing = append(missing, "pair_type_counts")
	}
	return missing
}
