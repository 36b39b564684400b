package structdiff

import (
	"fmt"
)

// Diff compares two values and returns human-readable, path-qualified
// difference descriptors. The result is empty iff Equal(a, b).
//
// Objects report keys present on one side only, then recurse into
// every common key. Arrays recurse only into the first index where the
// elements differ and stop there: for long record lists the first
// divergence point is what a reader acts on, and a full aligned diff
// would bury it.
func Diff(a, b Value) []string {
	return appendDiffs(nil, a, b, "")
}

// DiffValues projects two arbitrary Go values (documents, decoded JSON)
// and diffs them. Projection errors surface as a single descriptor so
// callers on the comparison path never have to branch on failure.
func DiffValues(a, b any) []string {
	av, err := FromAny(a)
	if err != nil {
		return []string{fmt.Sprintf("left operand not comparable: %v", err)}
	}
	bv, err := FromAny(b)
	if err != nil {
		return []string{fmt.Sprintf("right operand not comparable: %v", err)}
	}
	return Diff(av, bv)
}

func appendDiffs(out []string, a, b Value, path string) []string {
	if Equal(a, b) {
		return out
	}

	if ao, ok := a.(Object); ok {
		if bo, ok := b.(Object); ok {
			return appendObjectDiffs(out, ao, bo, path)
		}
	}
	if aa, ok := a.(Array); ok {
		if ba, ok := b.(Array); ok {
			return appendArrayDiffs(out, aa, ba, path)
		}
	}

	return append(out, fmt.Sprintf("%s: %s != %s", path, format(a), format(b)))
}

func appendObjectDiffs(out []string, a, b Object, path string) []string {
	for _, k := range a.SortedKeys() {
		if _, ok := b[k]; !ok {
			out = append(out, fmt.Sprintf("%s/%s: only in left", path, k))
		}
	}
	for _, k := range b.SortedKeys() {
		if _, ok := a[k]; !ok {
			out = append(out, fmt.Sprintf("%s/%s: only in right", path, k))
		}
	}
	for _, k := range a.SortedKeys() {
		if bv, ok := b[k]; ok {
			out = appendDiffs(out, a[k], bv, path+"/"+k)
		}
	}
	return out
}

func appendArrayDiffs(out []string, a, b Array, path string) []string {
	if len(a) != len(b) {
		out = append(out, fmt.Sprintf("%s: list length %d != %d", path, len(a), len(b)))
	}

	// First divergence only: report where the lists start to disagree,
	// then stop.
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !Equal(a[i], b[i]) {
			return appendDiffs(out, a[i], b[i], fmt.Sprintf("%s[%d]", path, i))
		}
	}
	return out
}
