package golden

import (
	"path/filepath"
	"strings"
	"unicode"
)

// EntryRef is a resolved baseline: absolute paths to the frozen source
// report and its canonical core artifact.
type EntryRef struct {
	OutPath  string
	CorePath string
}

type dirCanonKey struct {
	dir  string
	stem string
}

// Index is the read-only lookup structure for resolving an input file
// to its recorded baseline. Build it once per regression run.
type Index struct {
	byExactInput map[string]EntryRef
	byDirCanon   map[dirCanonKey]EntryRef
	byDirSingle  map[string]EntryRef
}

// BuildIndex derives the lookup maps from a manifest. baseDir resolves
// the manifest's relative paths. The input path recorded for an entry
// is its report path with the ".out" suffix removed, i.e. the structure
// file the report was generated from.
func BuildIndex(m Manifest, baseDir string) *Index {
	idx := &Index{
		byExactInput: map[string]EntryRef{},
		byDirCanon:   map[dirCanonKey]EntryRef{},
		byDirSingle:  map[string]EntryRef{},
	}

	type dirEntry struct {
		stem string
		ref  EntryRef
	}
	byDir := map[string][]dirEntry{}

	for _, e := range m.Entries {
		outPath := absPath(baseDir, e.Out)
		ref := EntryRef{
			OutPath:  outPath,
			CorePath: absPath(baseDir, e.CoreJSON),
		}

		inputPath := strings.TrimSuffix(outPath, ".out")
		idx.byExactInput[inputPath] = ref

		dir := filepath.Dir(outPath)
		byDir[dir] = append(byDir[dir], dirEntry{
			stem: CanonStem(filepath.Base(inputPath)),
			ref:  ref,
		})
	}

	for dir, entries := range byDir {
		if len(entries) == 1 {
			idx.byDirSingle[dir] = entries[0].ref
			continue
		}
		for _, e := range entries {
			idx.byDirCanon[dirCanonKey{dir: dir, stem: e.stem}] = e.ref
		}
	}

	return idx
}

// Resolve maps an input path to its baseline using three tiers, first
// hit wins: exact input path, canonicalized stem within the same
// directory, then the directory's single entry if it has exactly one.
// A miss means the input is unverifiable, not that verification failed.
func (idx *Index) Resolve(inputPath string) (EntryRef, bool) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return EntryRef{}, false
	}

	if ref, ok := idx.byExactInput[abs]; ok {
		return ref, true
	}

	dir := filepath.Dir(abs)
	if ref, ok := idx.byDirCanon[dirCanonKey{dir: dir, stem: CanonStem(filepath.Base(abs))}]; ok {
		return ref, true
	}

	ref, ok := idx.byDirSingle[dir]
	return ref, ok
}

// CanonStem canonicalizes a file name for tier-two matching: lower
// case, alphanumeric runes only.
func CanonStem(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
