package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairAt(i, j int) BasePairRecord {
	return BasePairRecord{
		I: i, J: j, ChainI: "A", ResseqI: i, BaseI: "G",
		BaseJ: "C", ResseqJ: j, ChainJ: "A", Kind: KindPair, LW: "W/W",
	}
}

func TestCompareBasePairsOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b BasePairRecord
		want int // sign only
	}{
		{"by_i", pairAt(1, 9), pairAt(2, 3), -1},
		{"by_j", pairAt(1, 3), pairAt(1, 9), -1},
		{"equal", pairAt(4, 7), pairAt(4, 7), 0},
		{"unknown_sorts_first", BasePairRecord{I: -1, J: -1, ResseqI: -1, ResseqJ: -1, Kind: KindUnknown}, pairAt(1, 2), -1},
		{
			"by_kind_after_indices",
			BasePairRecord{I: 1, J: 2, Kind: KindPair},
			BasePairRecord{I: 1, J: 2, Kind: KindStacked},
			-1,
		},
		{
			"by_note_last",
			BasePairRecord{I: 1, J: 2, Kind: KindPair, LW: "W/W", Note: "VIII"},
			BasePairRecord{I: 1, J: 2, Kind: KindPair, LW: "W/W", Note: "XIX"},
			-1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareBasePairs(tt.a, tt.b)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
				assert.Positive(t, CompareBasePairs(tt.b, tt.a))
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestCompareMultiplets(t *testing.T) {
	a := MultipletRecord{Indices: []int{1, 2, 3}, Text: "x"}
	b := MultipletRecord{Indices: []int{1, 2, 4}, Text: "a"}
	assert.Negative(t, CompareMultiplets(a, b))

	// Shorter prefix sorts first.
	assert.Negative(t, CompareMultiplets(
		MultipletRecord{Indices: []int{1, 2}},
		MultipletRecord{Indices: []int{1, 2, 3}},
	))

	// Index-less entries precede indexed ones.
	assert.Negative(t, CompareMultiplets(
		MultipletRecord{Indices: []int{}, Text: "z"},
		MultipletRecord{Indices: []int{1}, Text: "a"},
	))

	// Ties break on text.
	assert.Negative(t, CompareMultiplets(
		MultipletRecord{Indices: []int{1}, Text: "a"},
		MultipletRecord{Indices: []int{1}, Text: "b"},
	))
}

func TestCanonicalizeSortsAndNormalizes(t *testing.T) {
	doc := CoreDocument{
		BasePairs: []BasePairRecord{pairAt(9, 23), pairAt(1, 72)},
		Multiplets: []MultipletRecord{
			{Indices: []int{5, 6, 7}, Text: "b"},
			{Text: "a"}, // nil Indices
		},
	}

	got := doc.Canonicalize()
	require.Len(t, got.BasePairs, 2)
	assert.Equal(t, 1, got.BasePairs[0].I)
	assert.Equal(t, 9, got.BasePairs[1].I)

	require.Len(t, got.Multiplets, 2)
	assert.Equal(t, []int{}, got.Multiplets[0].Indices)
	assert.Equal(t, "a", got.Multiplets[0].Text)
	assert.Equal(t, []int{5, 6, 7}, got.Multiplets[1].Indices)
}

func TestCanonicalizeNilSlices(t *testing.T) {
	got := CoreDocument{}.Canonicalize()
	assert.NotNil(t, got.BasePairs)
	assert.NotNil(t, got.Multiplets)
	assert.Empty(t, got.BasePairs)
	assert.Empty(t, got.Multiplets)
}

func TestDocumentEqual(t *testing.T) {
	base := CoreDocument{
		BasePairs: []BasePairRecord{pairAt(1, 72)},
		Stats:     Stats{TotalPairs: IntPtr(1), TotalBases: IntPtr(2)},
	}.Canonicalize()

	same := CoreDocument{
		BasePairs: []BasePairRecord{pairAt(1, 72)},
		Stats:     Stats{TotalPairs: IntPtr(1), TotalBases: IntPtr(2)},
	}.Canonicalize()
	assert.True(t, base.Equal(same))

	noteChanged := CoreDocument{
		BasePairs: []BasePairRecord{pairAt(1, 72)},
		Stats:     Stats{TotalPairs: IntPtr(1), TotalBases: IntPtr(2)},
	}.Canonicalize()
	noteChanged.BasePairs[0].Note = "XIX"
	assert.False(t, base.Equal(noteChanged))

	statsChanged := CoreDocument{
		BasePairs: []BasePairRecord{pairAt(1, 72)},
		Stats:     Stats{TotalPairs: IntPtr(2), TotalBases: IntPtr(2)},
	}.Canonicalize()
	assert.False(t, base.Equal(statsChanged))
}

func TestStatsEqual(t *testing.T) {
	assert.True(t, Stats{}.Equal(Stats{}))
	assert.True(t, Stats{
		TotalPairs: IntPtr(3), TotalBases: IntPtr(9),
		PairTypeCounts: map[string]int{"WW--": 3},
	}.Equal(Stats{
		TotalPairs: IntPtr(3), TotalBases: IntPtr(9),
		PairTypeCounts: map[string]int{"WW--": 3},
	}))
	assert.False(t, Stats{TotalPairs: IntPtr(3)}.Equal(Stats{}))
	assert.False(t, Stats{PairTypeCounts: map[string]int{"WW--": 3}}.
		Equal(Stats{PairTypeCounts: map[string]int{"WW--": 4}}))
}
