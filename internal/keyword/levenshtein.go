// Package keyword provides the lexical layer of the search engine: text
// normalization, edit distance, typo correction and synonym expansion.
package keyword

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change one string into another.
// This is a pure function with no side effects. Callers lowercase inputs first.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}

	// Convert to runes for proper Unicode handling
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Only two rows of the (lenA+1) x (lenB+1) table are live at a time
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[lenB]
}

// Similarity returns 1 - distance/maxLen in [0, 1], measured in runes.
// Two empty strings are identical and yield 1.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	sim := 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
	if sim < 0 {
		return 0
	}
	return sim
}

// WithinDistance reports whether a and b are at most maxDist edits apart.
// The length difference is checked first so that clearly distant pairs skip the table.
func WithinDistance(a, b string, maxDist int) bool {
	lenDiff := len([]rune(a)) - len([]rune(b))
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > maxDist {
		return false
	}
	return LevenshteinDistance(a, b) <= maxDist
}
