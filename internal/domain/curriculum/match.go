package curriculum

import "strings"

// Matches is the fuzzy name heuristic used for subject, interest and prerequisite
// comparisons: a case-insensitive substring match in either direction. Empty input
// never matches.
func Matches(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))
	if left == "" || right == "" {
		return false
	}
	return strings.Contains(left, right) || strings.Contains(right, left)
}

// MatchesAny reports whether name matches any candidate.
func MatchesAny(name string, candidates []string) bool {
	for _, candidate := range candidates {
		if Matches(name, candidate) {
			return true
		}
	}
	return false
}
