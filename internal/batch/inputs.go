package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Structure file extensions the engines accept.
var allowedInputExts = map[string]bool{
	".pdb": true,
	".ent": true,
	".cif": true,
}

// Scratch copies the legacy engine leaves next to its input.
var excludedNameSuffixes = []string{"_tmp.pdb"}

// CollectInputs expands a mix of files, directories, globs, and list
// files into a deduplicated, absolute input list. Directories are
// walked recursively; globs and directory walks apply the structure
// extension filter, while explicitly named files are kept as given.
func CollectInputs(items, listFiles []string) ([]string, error) {
	expanded := append([]string{}, items...)
	for _, lf := range listFiles {
		lines, err := readListFile(lf)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, lines...)
	}

	var out []string
	for _, item := range expanded {
		switch {
		case hasGlobChars(item):
			matches, err := filepath.Glob(item)
			if err != nil {
				return nil, fmt.Errorf("bad glob %q: %w", item, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				if isStructureFile(m) {
					out = append(out, m)
				}
			}
		case isDir(item):
			walked, err := walkStructures(item)
			if err != nil {
				return nil, err
			}
			out = append(out, walked...)
		default:
			out = append(out, item)
		}
	}

	seen := map[string]bool{}
	uniq := make([]string, 0, len(out))
	for _, p := range out {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		uniq = append(uniq, abs)
	}
	return uniq, nil
}

// readListFile yields the non-blank, non-comment lines of a list file.
func readListFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	var out []string
	for _, raw := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(raw)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func walkStructures(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isStructureFile(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

func isStructureFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if !allowedInputExts[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	lower := strings.ToLower(filepath.Base(path))
	for _, sfx := range excludedNameSuffixes {
		if strings.HasSuffix(lower, sfx) {
			return false
		}
	}
	return true
}

func hasGlobChars(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
