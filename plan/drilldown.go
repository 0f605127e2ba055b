package plan

// MostFrequentValue picks the dominant value from a frequency distribution.
// Ties are broken by lexical order of the value, so the choice is
// deterministic. Returns ok=false for an empty distribution.
//
// The coordinator uses this to choose an implicit drill-down target when the
// caller did not specify the next taxonomy level; keeping it a pure function
// over a map keeps it unit-testable without a live backend.
func MostFrequentValue(freq map[string]int) (value string, ok bool) {
	best := ""
	bestCount := 0
	for v, count := range freq {
		if count > bestCount || (count == bestCount && bestCount > 0 && v < best) {
			best = v
			bestCount = count
		}
	}
	if bestCount == 0 {
		return "", false
	}
	return best, true
}
