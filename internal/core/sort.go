package core

import (
	"slices"
	"strings"
)

// CompareBasePairs orders base-pair records by the canonical composite
// key (i, j, kind, chain_i, resseq_i, base_i, base_j, resseq_j,
// chain_j, lw, orientation, syn, note, text). Absent optional fields
// compare as empty strings / zero.
func CompareBasePairs(a, b BasePairRecord) int {
	if c := a.I - b.I; c != 0 {
		return c
	}
	if c := a.J - b.J; c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
		return c
	}
	if c := strings.Compare(a.ChainI, b.ChainI); c != 0 {
		return c
	}
	if c := a.ResseqI - b.ResseqI; c != 0 {
		return c
	}
	if c := strings.Compare(a.BaseI, b.BaseI); c != 0 {
		return c
	}
	if c := strings.Compare(a.BaseJ, b.BaseJ); c != 0 {
		return c
	}
	if c := a.ResseqJ - b.ResseqJ; c != 0 {
		return c
	}
	if c := strings.Compare(a.ChainJ, b.ChainJ); c != 0 {
		return c
	}
	if c := strings.Compare(a.LW, b.LW); c != 0 {
		return c
	}
	if c := strings.Compare(a.Orientation, b.Orientation); c != 0 {
		return c
	}
	if c := a.Syn - b.Syn; c != 0 {
		return c
	}
	if c := strings.Compare(a.Note, b.Note); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// CompareMultiplets orders multiplet records by (indices, text).
// Index tuples compare element-wise with the shorter tuple first on a
// common prefix.
func CompareMultiplets(a, b MultipletRecord) int {
	if c := slices.Compare(a.Indices, b.Indices); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// Canonicalize sorts the document's record lists into canonical order
// and returns the document. The receiver's slices are sorted in place;
// callers building a fresh document chain this before publishing it.
func (d CoreDocument) Canonicalize() CoreDocument {
	if d.BasePairs == nil {
		d.BasePairs = []BasePairRecord{}
	}
	if d.Multiplets == nil {
		d.Multiplets = []MultipletRecord{}
	}
	for i := range d.Multiplets {
		if d.Multiplets[i].Indices == nil {
			d.Multiplets[i].Indices = []int{}
		}
	}
	slices.SortFunc(d.BasePairs, CompareBasePairs)
	slices.SortFunc(d.Multiplets, CompareMultiplets)
	return d
}

// Equal reports structural equality of two documents. Both operands
// are expected to already be in canonical order.
func (d CoreDocument) Equal(other CoreDocument) bool {
	if len(d.BasePairs) != len(other.BasePairs) ||
		len(d.Multiplets) != len(other.Multiplets) {
		return false
	}
	for i := range d.BasePairs {
		if d.BasePairs[i] != other.BasePairs[i] {
			return false
		}
	}
	for i := range d.Multiplets {
		if CompareMultiplets(d.Multiplets[i], other.Multiplets[i]) != 0 {
			return false
		}
	}
	return d.Stats.Equal(other.Stats)
}

// Equal reports equality of two stats summaries.
func (s Stats) Equal(other Stats) bool {
	if !intPtrEqual(s.TotalPairs, other.TotalPairs) ||
		!intPtrEqual(s.TotalBases, other.TotalBases) {
		return false
	}
	if len(s.PairTypeCounts) != len(other.PairTypeCounts) {
		return false
	}
	for k, v := range s.PairTypeCounts {
		if ov, ok := other.PairTypeCounts[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
