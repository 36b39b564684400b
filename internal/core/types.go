package core

// PairKind classifies a base-pair record.
type PairKind string

const (
	// KindPair is a classified base pair carrying a Leontis-Westhof
	// edge code and optional orientation, syn count, and note.
	KindPair PairKind = "pair"

	// KindStacked is a stacking interaction. Only the syn count is
	// meaningful; LW, orientation, and note are always absent.
	KindStacked PairKind = "stacked"

	// KindUnknown is a report line that did not match the base-pair
	// grammar. Only Text is trusted; it holds the whitespace-normalized
	// source line verbatim.
	KindUnknown PairKind = "unknown"
)

// BasePairRecord is one interaction between two residues.
//
// The populated optional fields are fully determined by Kind:
// pair records may carry LW (required), Orientation, Syn, and Note;
// stacked records carry only Syn; unknown records carry only Text.
type BasePairRecord struct {
	I       int      `json:"i"`
	J       int      `json:"j"`
	ChainI  string   `json:"chain_i"`
	ResseqI int      `json:"resseq_i"`
	BaseI   string   `json:"base_i"`
	BaseJ   string   `json:"base_j"`
	ResseqJ int      `json:"resseq_j"`
	ChainJ  string   `json:"chain_j"`
	Kind    PairKind `json:"kind"`

	LW          string `json:"lw,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	Syn         int    `json:"syn,omitempty"`
	Note        string `json:"note,omitempty"`
	Text        string `json:"text,omitempty"`
}

// MultipletRecord is a higher-order grouping of three or more residues.
type MultipletRecord struct {
	Indices []int  `json:"indices"`
	Text    string `json:"text"`
}

// Stats summarizes a report. TotalPairs and TotalBases are either both
// present or both absent. PairTypeCounts maps classifier labels to
// counts and is always canonicalized by sorted key before output.
type Stats struct {
	TotalPairs     *int           `json:"total_pairs,omitempty"`
	TotalBases     *int           `json:"total_bases,omitempty"`
	PairTypeCounts map[string]int `json:"pair_type_counts,omitempty"`
}

// CoreDocument is the unit of comparison and storage: the ordered
// base-pair records, the ordered multiplet records, and the stats
// summary extracted from one report.
type CoreDocument struct {
	BasePairs  []BasePairRecord  `json:"base_pairs"`
	Multiplets []MultipletRecord `json:"multiplets"`
	Stats      Stats             `json:"stats"`
}

// Orientation values recognized on pair records.
const (
	OrientationCis  = "cis"
	OrientationTran = "tran"
)

// IntPtr returns a pointer to n. Convenience for building Stats values.
func IntPtr(n int) *int {
	return &n
}
