package golden

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ManifestSchemaVersion is the schema version written into manifests.
const ManifestSchemaVersion = 1

// ManifestName is the manifest file name inside a baseline directory.
const ManifestName = "manifest.json"

// CoreSuffix is the extension of frozen core artifacts.
const CoreSuffix = ".core.json"

// EntryCounts records data-quality counts captured at freeze time.
type EntryCounts struct {
	BasePairs        int `json:"base_pairs"`
	Multiplets       int `json:"multiplets"`
	UnknownBasePairs int `json:"unknown_base_pairs"`
}

// Entry is one frozen baseline: the source report and the canonical
// core artifact extracted from it. Paths are slash-separated and
// relative to the manifest's base directory when possible.
type Entry struct {
	Out      string      `json:"out"`
	CoreJSON string      `json:"core_json"`
	Counts   EntryCounts `json:"counts"`
}

// Manifest describes a frozen baseline set.
type Manifest struct {
	SchemaVersion int      `json:"schema_version"`
	Root          string   `json:"root"`
	ExcludeSuffix []string `json:"exclude_suffix"`
	Entries       []Entry  `json:"entries"`
}

// sortEntries puts entries into the canonical (out, core_json) order.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Out != entries[j].Out {
			return entries[i].Out < entries[j].Out
		}
		return entries[i].CoreJSON < entries[j].CoreJSON
	})
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

// Write writes the manifest with stable entry ordering and two-space
// indentation.
func (m Manifest) Write(path string) error {
	sortEntries(m.Entries)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// relPath renders p relative to base as a slash path, falling back to
// the absolute path when p lies outside base.
func relPath(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// absPath resolves a manifest path against the manifest base directory.
func absPath(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
