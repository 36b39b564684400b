package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvcheck/internal/core"
	"rvcheck/internal/golden"
	"rvcheck/internal/report"
)

const runnerReport = `BEGIN_base-pair
     1_72, A:     1 G-C    72 A: +/+ cis XIX
END_base-pair
  The total base pairs =   1 (from   76 bases)
------------------------------------------------
 WW--
   1
------------------------------------------------
Summary of triplets and higher multiplets
BEGIN_multiplets
END_multiplets
`

// reportEngine writes a fixed report next to its input, the way the
// legacy engine does.
func reportEngine(t *testing.T, text string) Engine {
	t.Helper()
	bin := writeScript(t, t.TempDir(), "engine.sh",
		`cat > "$1.out" <<'REPORT'
`+text+"REPORT\n")
	return Engine{Bin: bin}
}

func TestRunProducesArtifacts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdb"))
	touch(t, filepath.Join(dir, "b.pdb"))
	outDir := t.TempDir()

	summary, err := Run(context.Background(),
		[]string{filepath.Join(dir, "a.pdb"), filepath.Join(dir, "b.pdb")},
		Options{OutDir: outDir, Workers: 2, Engine: reportEngine(t, runnerReport), JobIDMode: ModeStem, RunID: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, Counts{OK: 2}, summary.Counts)
	assert.False(t, summary.Failed())
	require.Len(t, summary.Results, 2)

	// Results sorted by job id within a status.
	assert.Equal(t, "a", summary.Results[0].JobID)
	assert.Equal(t, "b", summary.Results[1].JobID)

	r := summary.Results[0]
	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, filepath.Join(outDir, "a"), r.JobDir)
	assert.FileExists(t, r.PairsJSON)
	assert.FileExists(t, r.EngineOut)

	// The pairs artifact carries the parsed core of the engine report.
	data, err := os.ReadFile(r.PairsJSON)
	require.NoError(t, err)
	pd, err := core.DecodePairsDocument(data)
	require.NoError(t, err)
	assert.Equal(t, core.PairsSchemaVersion, pd.SchemaVersion)
	assert.True(t, pd.Core.Equal(report.Parse(runnerReport)))
	require.NotNil(t, pd.Source)
	assert.Equal(t, "out", pd.Source.Format)
}

func TestRunSkipsExistingJobs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdb"))
	outDir := t.TempDir()
	opts := Options{OutDir: outDir, Engine: reportEngine(t, runnerReport), JobIDMode: ModeStem}

	first, err := Run(context.Background(), []string{filepath.Join(dir, "a.pdb")}, opts)
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1}, first.Counts)

	second, err := Run(context.Background(), []string{filepath.Join(dir, "a.pdb")}, opts)
	require.NoError(t, err)
	assert.Equal(t, Counts{Skipped: 1}, second.Counts)
	assert.Equal(t, StatusSkipped, second.Results[0].Status)

	opts.Overwrite = true
	third, err := Run(context.Background(), []string{filepath.Join(dir, "a.pdb")}, opts)
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1}, third.Counts)
}

func TestRunRejectsJobIDCollision(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	touch(t, filepath.Join(left, "1ehz.pdb"))
	touch(t, filepath.Join(right, "1ehz.pdb"))

	_, err := Run(context.Background(),
		[]string{filepath.Join(left, "1ehz.pdb"), filepath.Join(right, "1ehz.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, runnerReport), JobIDMode: ModeStem})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job id collision")
}

func TestRunHashedModeAvoidsCollision(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	touch(t, filepath.Join(left, "1ehz.pdb"))
	touch(t, filepath.Join(right, "1ehz.pdb"))

	summary, err := Run(context.Background(),
		[]string{filepath.Join(left, "1ehz.pdb"), filepath.Join(right, "1ehz.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, runnerReport)})
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 2}, summary.Counts)
}

func TestRunEngineFailureIsolated(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdb"))
	touch(t, filepath.Join(dir, "b.pdb"))

	bin := writeScript(t, t.TempDir(), "engine.sh",
		`case "$1" in
a.pdb) echo boom; exit 9 ;;
*) cat > "$1.out" <<'REPORT'
`+runnerReport+`REPORT
;;
esac
`)

	summary, err := Run(context.Background(),
		[]string{filepath.Join(dir, "a.pdb"), filepath.Join(dir, "b.pdb")},
		Options{OutDir: t.TempDir(), Engine: Engine{Bin: bin}, JobIDMode: ModeStem})
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1, Failed: 1}, summary.Counts)
	assert.True(t, summary.Failed())

	// Failed results sort ahead of ok results.
	assert.Equal(t, StatusFailed, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Error, "code=9")
}

func TestRunEngineWritesPairsDirectly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdb"))

	bin := writeScript(t, t.TempDir(), "engine.sh",
		`cat > pairs.json <<'DOC'
{"schema_version":1,"core":{"base_pairs":[],"multiplets":[],"stats":{"total_pairs":0,"total_bases":76}}}
DOC
`)

	summary, err := Run(context.Background(), []string{filepath.Join(dir, "a.pdb")},
		Options{OutDir: t.TempDir(), Engine: Engine{Bin: bin}, JobIDMode: ModeStem})
	require.NoError(t, err)
	require.Equal(t, Counts{OK: 1}, summary.Counts)

	r := summary.Results[0]
	assert.FileExists(t, r.PairsJSON)
	assert.Empty(t, r.EngineOut)
}

func TestRunEngineProducesNothing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdb"))

	bin := writeScript(t, t.TempDir(), "engine.sh", `true`)
	summary, err := Run(context.Background(), []string{filepath.Join(dir, "a.pdb")},
		Options{OutDir: t.TempDir(), Engine: Engine{Bin: bin}, JobIDMode: ModeStem})
	require.NoError(t, err)
	assert.Equal(t, Counts{Failed: 1}, summary.Counts)
	assert.Contains(t, summary.Results[0].Error, "produced no report")
}

// regressFixture freezes a baseline for <root>/1ehz.pdb and returns the
// resolver index anchored at root.
func regressFixture(t *testing.T, baselineReport string) (string, *golden.Index) {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "1ehz.pdb"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "1ehz.pdb.out"), []byte(baselineReport), 0o644))

	_, err := golden.Freeze(golden.FreezeOptions{Root: root, BaseDir: root})
	require.NoError(t, err)

	m, err := golden.LoadManifest(filepath.Join(root, "golden_core", golden.ManifestName))
	require.NoError(t, err)
	return root, golden.BuildIndex(m, root)
}

func TestRunRegressMatch(t *testing.T) {
	root, index := regressFixture(t, runnerReport)

	summary, err := Run(context.Background(), []string{filepath.Join(root, "1ehz.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, runnerReport), JobIDMode: ModeStem, Index: index})
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1}, summary.Counts)

	r := summary.Results[0]
	require.NotNil(t, r.RegressOK)
	assert.True(t, *r.RegressOK)
	assert.Empty(t, r.RegressDiffs)
}

func TestRunRegressMismatch(t *testing.T) {
	changed := `BEGIN_base-pair
     1_72, A:     1 G-C    72 A: +/+ tran XIX
END_base-pair
  The total base pairs =   1 (from   76 bases)
------------------------------------------------
 WW--
   1
------------------------------------------------
`
	root, index := regressFixture(t, runnerReport)

	summary, err := Run(context.Background(), []string{filepath.Join(root, "1ehz.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, changed), JobIDMode: ModeStem, Index: index})
	require.NoError(t, err)
	assert.Equal(t, Counts{Failed: 1, RegressFailed: 1}, summary.Counts)
	assert.Contains(t, summary.Results[0].Error, "baseline mismatch")
	assert.NotEmpty(t, summary.Results[0].RegressDiffs)
}

func TestRunRegressMismatchKeepGoing(t *testing.T) {
	changed := `BEGIN_base-pair
     1_72, A:     1 G-C    72 A: +/+ tran XIX
END_base-pair
  The total base pairs =   1 (from   76 bases)
------------------------------------------------
 WW--
   1
------------------------------------------------
`
	root, index := regressFixture(t, runnerReport)

	summary, err := Run(context.Background(), []string{filepath.Join(root, "1ehz.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, changed), JobIDMode: ModeStem, Index: index, KeepGoing: true})
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1, RegressFailed: 1}, summary.Counts)
	assert.True(t, summary.Failed())

	r := summary.Results[0]
	assert.Equal(t, StatusOK, r.Status)
	require.NotNil(t, r.RegressOK)
	assert.False(t, *r.RegressOK)
}

func TestRunUnresolvableBaselineIsUnverified(t *testing.T) {
	_, index := regressFixture(t, runnerReport)

	elsewhere := t.TempDir()
	touch(t, filepath.Join(elsewhere, "other.pdb"))

	summary, err := Run(context.Background(), []string{filepath.Join(elsewhere, "other.pdb")},
		Options{OutDir: t.TempDir(), Engine: reportEngine(t, runnerReport), JobIDMode: ModeStem, Index: index})
	require.NoError(t, err)
	assert.Equal(t, Counts{OK: 1}, summary.Counts)
	assert.Nil(t, summary.Results[0].RegressOK)
}

func TestWriteAndLoadSummary(t *testing.T) {
	outDir := t.TempDir()
	s := Summary{
		SchemaVersion: SummarySchemaVersion,
		RunID:         "run-7",
		Counts:        Counts{OK: 2, Failed: 1},
		Results: []Result{
			{Input: "/a.pdb", JobID: "a", Status: StatusOK},
		},
	}

	path, err := WriteSummary(outDir, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, SummaryName), path)

	got, err := LoadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
