package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobIDMode(t *testing.T) {
	for _, s := range []string{"stem", "name", "stem-hash", "name-hash"} {
		mode, err := ParseJobIDMode(s)
		require.NoError(t, err)
		assert.Equal(t, JobIDMode(s), mode)
	}

	_, err := ParseJobIDMode("bogus")
	assert.Error(t, err)
}

func TestJobIDModes(t *testing.T) {
	const path = "/data/structs/1EHZ.pdb"

	id, err := JobID(path, ModeStem)
	require.NoError(t, err)
	assert.Equal(t, "1EHZ", id)

	id, err = JobID(path, ModeName)
	require.NoError(t, err)
	assert.Equal(t, "1EHZ.pdb", id)

	id, err = JobID(path, ModeStemHash)
	require.NoError(t, err)
	assert.Regexp(t, `^1EHZ__[0-9a-f]{8}$`, id)

	id, err = JobID(path, ModeNameHash)
	require.NoError(t, err)
	assert.Regexp(t, `^1EHZ\.pdb__[0-9a-f]{8}$`, id)
}

func TestJobIDHashedModesDisambiguate(t *testing.T) {
	a, err := JobID("/left/1EHZ.pdb", ModeStemHash)
	require.NoError(t, err)
	b, err := JobID("/right/1EHZ.pdb", ModeStemHash)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// Same path always hashes the same.
	again, err := JobID("/left/1EHZ.pdb", ModeStemHash)
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestSanitizeJobID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1EHZ", "1EHZ"},
		{"a b(c)", "a_b_c"},
		{"näme", "n_me"},
		{"...", "job"},
		{"_x_", "x"},
		{"ok-name.v2", "ok-name.v2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeJobID(tt.in), "sanitizeJobID(%q)", tt.in)
	}
}
