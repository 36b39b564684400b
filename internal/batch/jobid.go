package batch

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// JobIDMode selects how a job identifier is derived from an input path.
// The hashed modes append an 8-hex digest of the full path so that two
// inputs sharing a file name map to distinct job directories.
type JobIDMode string

const (
	ModeStem     JobIDMode = "stem"
	ModeName     JobIDMode = "name"
	ModeStemHash JobIDMode = "stem-hash"
	ModeNameHash JobIDMode = "name-hash"
)

// ParseJobIDMode validates a mode string.
func ParseJobIDMode(s string) (JobIDMode, error) {
	switch JobIDMode(s) {
	case ModeStem, ModeName, ModeStemHash, ModeNameHash:
		return JobIDMode(s), nil
	}
	return "", fmt.Errorf("unknown job-id-mode: %q", s)
}

// JobID derives the job identifier for an input path.
func JobID(path string, mode JobIDMode) (string, error) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	switch mode {
	case ModeStem:
		return sanitizeJobID(stem), nil
	case ModeName:
		return sanitizeJobID(name), nil
	case ModeStemHash:
		return sanitizeJobID(stem) + "__" + hash8(path), nil
	case ModeNameHash:
		return sanitizeJobID(name) + "__" + hash8(path), nil
	}
	return "", fmt.Errorf("unknown job-id-mode: %q", mode)
}

// sanitizeJobID keeps alphanumerics, dash, underscore, and dot;
// everything else becomes an underscore. The result is safe as a
// directory name on every platform the engines run on.
func sanitizeJobID(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "job"
	}
	return out
}

func hash8(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:8]
}
