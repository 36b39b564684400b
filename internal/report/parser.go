package report

import (
	"regexp"
	"strconv"
	"strings"

	"rvcheck/internal/core"
)

// Grammar patterns, compiled once at package initialization.
var (
	reBeginBasePair  = regexp.MustCompile(`^\s*BEGIN_base-pair\s*$`)
	reEndBasePair    = regexp.MustCompile(`^\s*END_base-pair\s*$`)
	reBeginMultiplet = regexp.MustCompile(`^\s*BEGIN_multiplets\s*$`)
	reEndMultiplet   = regexp.MustCompile(`^\s*END_multiplets\s*$`)
	reTotal          = regexp.MustCompile(`(?i)^\s*The total base pairs\s*=\s*(\d+)\s*\(from\s*(\d+)\s*bases\)\s*$`)
	reSeparator      = regexp.MustCompile(`^\s*-{5,}\s*$`)
	rePairLine       = regexp.MustCompile(`^\s*(\d+)_(\d+),\s*(.):\s*([0-9]+)\s+(\S)-(\S)\s+([0-9]+)\s+(.):\s*(.*?)\s*$`)
	reInteger        = regexp.MustCompile(`^-?\d+$`)
)

// HasBasePairBlock reports whether the text contains a base-pair block
// marker, i.e. whether parsing it can yield any records at all.
func HasBasePairBlock(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if reBeginBasePair.MatchString(line) {
			return true
		}
	}
	return false
}

// Parse converts raw report text into a canonical core document.
// It never fails: lines violating the base-pair grammar become
// kind=unknown records carrying their normalized source text, and
// sections that never appear simply leave their part of the document
// empty.
func Parse(text string) core.CoreDocument {
	lines := strings.Split(text, "\n")

	basePairs := []core.BasePairRecord{}
	for _, raw := range extractBlock(lines, reBeginBasePair, reEndBasePair) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		rec, ok := parseBasePairLine(raw)
		if !ok {
			rec = core.BasePairRecord{
				I: -1, J: -1,
				ResseqI: -1, ResseqJ: -1,
				Kind: core.KindUnknown,
				Text: normWS(raw),
			}
		}
		basePairs = append(basePairs, rec)
	}

	multiplets := []core.MultipletRecord{}
	for _, raw := range extractBlock(lines, reBeginMultiplet, reEndMultiplet) {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		multiplets = append(multiplets, parseMultipletLine(s))
	}

	doc := core.CoreDocument{
		BasePairs:  basePairs,
		Multiplets: multiplets,
		Stats:      extractStats(lines),
	}
	return doc.Canonicalize()
}

// extractBlock returns the lines strictly between the first begin
// marker and the next end marker. Lines outside the span are ignored.
func extractBlock(lines []string, begin, end *regexp.Regexp) []string {
	var out []string
	inBlock := false
	for _, line := range lines {
		if !inBlock {
			if begin.MatchString(line) {
				inBlock = true
			}
			continue
		}
		if end.MatchString(line) {
			break
		}
		out = append(out, line)
	}
	return out
}

// parseBasePairLine matches one row of the base-pair block. The second
// return value is false when the row does not fit the fixed grammar.
func parseBasePairLine(line string) (core.BasePairRecord, bool) {
	m := rePairLine.FindStringSubmatch(line)
	if m == nil {
		return core.BasePairRecord{}, false
	}

	rec := core.BasePairRecord{
		I:       mustAtoi(m[1]),
		J:       mustAtoi(m[2]),
		ChainI:  m[3],
		ResseqI: mustAtoi(m[4]),
		BaseI:   m[5],
		BaseJ:   m[6],
		ResseqJ: mustAtoi(m[7]),
		ChainJ:  m[8],
	}

	kind, lw, orientation, syn, note := parsePairRest(m[9])
	rec.Kind = kind
	rec.Syn = syn
	if kind == core.KindPair {
		rec.LW = lw
		rec.Orientation = orientation
		rec.Note = note
	}
	return rec, true
}

// parsePairRest tokenizes the residual text after the residue columns.
// A trailing "stacked" token (case-insensitive) marks a stacking row;
// otherwise the first token is the LW classifier and the remaining
// tokens are orientation markers, syn annotations, or note text.
func parsePairRest(rest string) (kind core.PairKind, lw, orientation string, syn int, note string) {
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return core.KindPair, "", "", 0, ""
	}

	if strings.EqualFold(tokens[len(tokens)-1], "stacked") {
		for _, t := range tokens[:len(tokens)-1] {
			if strings.EqualFold(t, "syn") {
				syn++
			}
		}
		return core.KindStacked, "", "", syn, ""
	}

	lw = tokens[0]
	var noteTokens []string
	for _, t := range tokens[1:] {
		switch strings.ToLower(t) {
		case "cis":
			orientation = core.OrientationCis
		case "tran", "trans":
			orientation = core.OrientationTran
		case "syn":
			syn++
		default:
			noteTokens = append(noteTokens, t)
		}
	}
	note = strings.TrimSpace(strings.Join(noteTokens, " "))
	return core.KindPair, lw, orientation, syn, note
}

// parseMultipletLine splits an index prefix from the description. A
// line without "|" becomes an index-less record carrying only text.
func parseMultipletLine(s string) core.MultipletRecord {
	left, right, found := strings.Cut(s, "|")
	if !found {
		return core.MultipletRecord{Indices: []int{}, Text: normWS(s)}
	}

	left = strings.TrimSpace(strings.TrimRight(left, "_"))
	indices := []int{}
	for _, part := range strings.Split(left, "_") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil && !strings.ContainsAny(part, "+-") {
			indices = append(indices, n)
		}
	}
	return core.MultipletRecord{Indices: indices, Text: normWS(right)}
}

// extractStats locates the totals line and the pair-type count table
// that follows it. A header line containing "--" tokens immediately
// followed by a line of integers of equal arity contributes one set of
// counts; the accumulated map is keyed by header label.
func extractStats(lines []string) core.Stats {
	var stats core.Stats

	totalIdx := -1
	for idx, line := range lines {
		m := reTotal.FindStringSubmatch(strings.TrimRight(line, "\n"))
		if m != nil {
			stats.TotalPairs = core.IntPtr(mustAtoi(m[1]))
			stats.TotalBases = core.IntPtr(mustAtoi(m[2]))
			totalIdx = idx
			break
		}
	}
	if totalIdx < 0 {
		return stats
	}

	counts := map[string]int{}
	var pendingHeader []string
	for _, line := range lines[totalIdx+1:] {
		line = strings.TrimRight(line, "\n")
		if reSeparator.MatchString(line) {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if hasDashToken(tokens) {
			pendingHeader = tokens
			continue
		}
		if pendingHeader == nil {
			continue
		}
		if allIntegers(tokens) {
			if len(tokens) == len(pendingHeader) {
				for i, key := range pendingHeader {
					counts[key] = mustAtoi(tokens[i])
				}
			}
			pendingHeader = nil
		}
	}

	if len(counts) > 0 {
		stats.PairTypeCounts = counts
	}
	return stats
}

func hasDashToken(tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(t, "--") {
			return true
		}
	}
	return false
}

func allIntegers(tokens []string) bool {
	for _, t := range tokens {
		if !reInteger.MatchString(t) {
			return false
		}
	}
	return true
}

// normWS collapses runs of whitespace to single spaces and trims.
func normWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mustAtoi converts digit-only regexp captures; the grammar guarantees
// the argument is numeric.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
