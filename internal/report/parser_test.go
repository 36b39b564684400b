package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvcheck/internal/core"
)

func TestParseClassifiedPairLine(t *testing.T) {
	doc := Parse("BEGIN_base-pair\n9_23, A: 9 A-A 23 A: H/H tran syn II\nEND_base-pair\n")
	require.Len(t, doc.BasePairs, 1)

	bp := doc.BasePairs[0]
	assert.Equal(t, 9, bp.I)
	assert.Equal(t, 23, bp.J)
	assert.Equal(t, "A", bp.ChainI)
	assert.Equal(t, 9, bp.ResseqI)
	assert.Equal(t, "A", bp.BaseI)
	assert.Equal(t, "A", bp.BaseJ)
	assert.Equal(t, 23, bp.ResseqJ)
	assert.Equal(t, "A", bp.ChainJ)
	assert.Equal(t, core.KindPair, bp.Kind)
	assert.Equal(t, "H/H", bp.LW)
	assert.Equal(t, core.OrientationTran, bp.Orientation)
	assert.Equal(t, 1, bp.Syn)
	assert.Equal(t, "II", bp.Note)
	assert.Empty(t, bp.Text)
}

func TestParseStackedLine(t *testing.T) {
	doc := Parse("BEGIN_base-pair\n30_31, A: 30 G-A 31 A: stacked\nEND_base-pair\n")
	require.Len(t, doc.BasePairs, 1)

	bp := doc.BasePairs[0]
	assert.Equal(t, core.KindStacked, bp.Kind)
	assert.Equal(t, 0, bp.Syn)
	assert.Empty(t, bp.LW)
	assert.Empty(t, bp.Orientation)
	assert.Empty(t, bp.Note)
}

func TestParseRestTokens(t *testing.T) {
	tests := []struct {
		name        string
		rest        string
		kind        core.PairKind
		lw          string
		orientation string
		syn         int
		note        string
	}{
		{"lw_only", "W/W", core.KindPair, "W/W", "", 0, ""},
		{"cis", "+/+ cis XIX", core.KindPair, "+/+", "cis", 0, "XIX"},
		{"trans_normalized", "W/H trans", core.KindPair, "W/H", "tran", 0, ""},
		{"tran_kept", "W/H tran", core.KindPair, "W/H", "tran", 0, ""},
		{"case_insensitive_orientation", "W/W CIS", core.KindPair, "W/W", "cis", 0, ""},
		{"double_syn", "S/S cis syn syn", core.KindPair, "S/S", "cis", 2, ""},
		{"note_joined", "W/W cis n/a VIII extra", core.KindPair, "W/W", "cis", 0, "n/a VIII extra"},
		{"stacked_upper", "STACKED", core.KindStacked, "", "", 0, ""},
		{"stacked_with_syn", "syn syn stacked", core.KindStacked, "", "", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse("BEGIN_base-pair\n1_2, A: 1 G-C 2 B: " + tt.rest + "\nEND_base-pair\n")
			require.Len(t, doc.BasePairs, 1)
			bp := doc.BasePairs[0]
			assert.Equal(t, tt.kind, bp.Kind)
			assert.Equal(t, tt.lw, bp.LW)
			assert.Equal(t, tt.orientation, bp.Orientation)
			assert.Equal(t, tt.syn, bp.Syn)
			assert.Equal(t, tt.note, bp.Note)
		})
	}
}

func TestParseMalformedLineNeverAborts(t *testing.T) {
	text := "BEGIN_base-pair\n" +
		"1_72, A: 1 G-C 72 A: +/+ cis XIX\n" +
		"this  row is   not grammar\n" +
		"9_23, A: 9 A-A 23 A: H/H tran\n" +
		"END_base-pair\n"

	doc := Parse(text)
	require.Len(t, doc.BasePairs, 3)

	var unknown []core.BasePairRecord
	for _, bp := range doc.BasePairs {
		if bp.Kind == core.KindUnknown {
			unknown = append(unknown, bp)
		}
	}
	require.Len(t, unknown, 1)
	assert.Equal(t, "this row is not grammar", unknown[0].Text)
	assert.Equal(t, -1, unknown[0].I)
	assert.Empty(t, unknown[0].LW)
}

func TestParseIgnoresLinesOutsideBlocks(t *testing.T) {
	text := "1_2, A: 1 G-C 2 A: W/W cis\n" + // outside any block
		"BEGIN_base-pair\nEND_base-pair\n"
	doc := Parse(text)
	assert.Empty(t, doc.BasePairs)
	assert.Empty(t, doc.Multiplets)
}

func TestParseMissingBlocksDegrade(t *testing.T) {
	doc := Parse("no markers at all\n")
	assert.Empty(t, doc.BasePairs)
	assert.Empty(t, doc.Multiplets)
	assert.Nil(t, doc.Stats.TotalPairs)
	assert.Nil(t, doc.Stats.PairTypeCounts)
}

func TestParseMultiplets(t *testing.T) {
	text := "BEGIN_multiplets\n" +
		"1_2_3_| A-G-C triple\n" +
		"free   text entry\n" +
		"END_multiplets\n"

	doc := Parse(text)
	require.Len(t, doc.Multiplets, 2)

	// Canonical order puts the index-less entry first.
	assert.Empty(t, doc.Multiplets[0].Indices)
	assert.Equal(t, "free text entry", doc.Multiplets[0].Text)
	assert.Equal(t, []int{1, 2, 3}, doc.Multiplets[1].Indices)
	assert.Equal(t, "A-G-C triple", doc.Multiplets[1].Text)
}

func TestParseStatsTotals(t *testing.T) {
	text := "  The total base pairs =  30 (from   76 bases)\n"
	doc := Parse(text)
	require.NotNil(t, doc.Stats.TotalPairs)
	require.NotNil(t, doc.Stats.TotalBases)
	assert.Equal(t, 30, *doc.Stats.TotalPairs)
	assert.Equal(t, 76, *doc.Stats.TotalBases)
	assert.Nil(t, doc.Stats.PairTypeCounts)
}

func TestParseStatsCountTable(t *testing.T) {
	text := "The total base pairs = 23 (from 76 bases)\n" +
		"------------------------------------------------\n" +
		" WW-- WW-+ WS--\n" +
		"  20    1    2\n" +
		"------------------------------------------------\n"

	doc := Parse(text)
	assert.Equal(t, map[string]int{"WW--": 20, "WW-+": 1, "WS--": 2}, doc.Stats.PairTypeCounts)
}

func TestParseStatsHeaderArityMismatchSkipped(t *testing.T) {
	text := "The total base pairs = 5 (from 10 bases)\n" +
		" WW-- WS--\n" +
		"  20    1    2\n"

	doc := Parse(text)
	assert.Nil(t, doc.Stats.PairTypeCounts)
}

func TestParseStatsMultipleHeaderRows(t *testing.T) {
	text := "The total base pairs = 5 (from 10 bases)\n" +
		" WW-- WS--\n" +
		"   3    1\n" +
		" HH-- SS--\n" +
		"   1    0\n"

	doc := Parse(text)
	assert.Equal(t, map[string]int{"WW--": 3, "WS--": 1, "HH--": 1, "SS--": 0}, doc.Stats.PairTypeCounts)
}

func TestParseCanonicalOrdering(t *testing.T) {
	text := "BEGIN_base-pair\n" +
		"30_31, A: 30 G-A 31 A: stacked\n" +
		"1_72, A: 1 G-C 72 A: +/+ cis XIX\n" +
		"9_23, A: 9 A-A 23 A: H/H tran\n" +
		"END_base-pair\n"

	doc := Parse(text)
	require.Len(t, doc.BasePairs, 3)
	assert.Equal(t, 1, doc.BasePairs[0].I)
	assert.Equal(t, 9, doc.BasePairs[1].I)
	assert.Equal(t, 30, doc.BasePairs[2].I)
}

func TestHasBasePairBlock(t *testing.T) {
	assert.True(t, HasBasePairBlock("  BEGIN_base-pair  \n"))
	assert.False(t, HasBasePairBlock("BEGIN_multiplets\n"))
}
