package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalDocument(t *testing.T) {
	doc := CoreDocument{
		BasePairs: []BasePairRecord{{
			I: 9, J: 23, ChainI: "A", ResseqI: 9, BaseI: "A",
			BaseJ: "A", ResseqJ: 23, ChainJ: "A",
			Kind: KindPair, LW: "H/H", Orientation: OrientationTran, Syn: 1, Note: "II",
		}},
	}.Canonicalize()

	out, err := MarshalCanonical(doc)
	require.NoError(t, err)

	want := `{"base_pairs":[{"base_i":"A","base_j":"A","chain_i":"A","chain_j":"A",` +
		`"i":9,"j":23,"kind":"pair","lw":"H/H","note":"II","orientation":"tran",` +
		`"resseq_i":9,"resseq_j":23,"syn":1}],"multiplets":[],"stats":{}}`
	assert.Equal(t, want, string(out))
}

func TestMarshalCanonicalSortsMapKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]int{"WW--": 20, "WS--": 2, "WW-+": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"WS--":2,"WW-+":1,"WW--":20}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(map[string]string{"note": "<A> & 'B'"})
	require.NoError(t, err)
	assert.Equal(t, `{"note":"<A> & 'B'"}`, string(out))
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// Combining acute accent composes to the precomposed form.
	decomposed, err := MarshalCanonical("e\u0301")
	require.NoError(t, err)
	composed, err := MarshalCanonical("\u00e9")
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	doc := CoreDocument{
		Stats: Stats{
			TotalPairs: IntPtr(3), TotalBases: IntPtr(9),
			PairTypeCounts: map[string]int{"WW--": 2, "WS--": 1},
		},
	}.Canonicalize()

	first, err := MarshalCanonical(doc)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(doc)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
