package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rvcheck/internal/core"
)

const tableBorder = "------------------------------------------------"

// Render is the structural inverse of Parse: it emits the base-pair
// block, the multiplet block, and the stats summary in the legacy
// report grammar. The document is canonicalized before emission, so
// Parse(Render(doc)) reproduces doc for any document Parse can build.
//
// Byte-identity with an original source report is not guaranteed; only
// the structured content round-trips.
func Render(doc core.CoreDocument) (string, error) {
	doc = core.CoreDocument{
		BasePairs:  append([]core.BasePairRecord(nil), doc.BasePairs...),
		Multiplets: append([]core.MultipletRecord(nil), doc.Multiplets...),
		Stats:      doc.Stats,
	}.Canonicalize()

	var lines []string
	lines = append(lines, "BEGIN_base-pair")
	for _, bp := range doc.BasePairs {
		s, err := FormatBasePairLine(bp)
		if err != nil {
			return "", err
		}
		if s != "" {
			lines = append(lines, s)
		}
	}
	lines = append(lines, "END_base-pair", "")

	lines = append(lines, "Summary of triplets and higher multiplets", "BEGIN_multiplets")
	for _, m := range doc.Multiplets {
		if s := formatMultipletLine(m); s != "" {
			lines = append(lines, s)
		}
	}
	lines = append(lines, "END_multiplets", "")

	if doc.Stats.TotalPairs != nil && doc.Stats.TotalBases != nil {
		lines = append(lines, fmt.Sprintf("  The total base pairs = %3d (from %4d bases)",
			*doc.Stats.TotalPairs, *doc.Stats.TotalBases))
		if len(doc.Stats.PairTypeCounts) > 0 {
			keys := make([]string, 0, len(doc.Stats.PairTypeCounts))
			for k := range doc.Stats.PairTypeCounts {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			counts := make([]string, len(keys))
			for i, k := range keys {
				counts[i] = strconv.Itoa(doc.Stats.PairTypeCounts[k])
			}
			lines = append(lines, tableBorder, strings.Join(keys, " "), strings.Join(counts, " "), tableBorder)
		}
	}

	return strings.Join(lines, "\n") + "\n", nil
}

// FormatBasePairLine renders one base-pair record as a report row.
// Unknown records emit their stored source text verbatim. A pair
// record with an empty LW classifier cannot be rendered and yields a
// MISSING_REQUIRED_FIELD codec error.
func FormatBasePairLine(bp core.BasePairRecord) (string, error) {
	if bp.Kind == core.KindUnknown {
		return strings.TrimSpace(bp.Text), nil
	}

	syn := bp.Syn
	if syn < 0 {
		syn = 0
	}

	var tokens []string
	switch bp.Kind {
	case core.KindStacked:
		for n := 0; n < syn; n++ {
			tokens = append(tokens, "syn")
		}
		tokens = append(tokens, "stacked")
	default:
		if bp.LW == "" {
			return "", newMissingFieldError("lw", fmt.Sprintf("%d_%d %s-%s", bp.I, bp.J, bp.BaseI, bp.BaseJ))
		}
		tokens = append(tokens, bp.LW)
		if bp.Orientation != "" {
			tokens = append(tokens, bp.Orientation)
		}
		for n := 0; n < syn; n++ {
			tokens = append(tokens, "syn")
		}
		if bp.Note != "" {
			tokens = append(tokens, bp.Note)
		}
	}

	chainI := bp.ChainI
	if chainI == "" {
		chainI = " "
	}
	chainJ := bp.ChainJ
	if chainJ == "" {
		chainJ = " "
	}

	rest := strings.TrimSpace(strings.Join(tokens, " "))
	line := fmt.Sprintf("%d_%d, %s: %d %s-%s %d %s: %s",
		bp.I, bp.J, chainI, bp.ResseqI, bp.BaseI, bp.BaseJ, bp.ResseqJ, chainJ, rest)
	return strings.TrimRight(line, " "), nil
}

// formatMultipletLine renders a multiplet row: an index prefix joined
// with underscores and terminated by "_|", or bare text for index-less
// entries.
func formatMultipletLine(m core.MultipletRecord) string {
	text := strings.TrimSpace(m.Text)
	if len(m.Indices) == 0 {
		return text
	}

	parts := make([]string, len(m.Indices))
	for i, n := range m.Indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.TrimRight(strings.Join(parts, "_")+"_| "+text, " ")
}
