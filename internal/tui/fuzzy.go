package tui

import "strings"

// FuzzyMatch reports whether every character of query appears in target in
// order, case-insensitively, along with a relevance score. Higher is better:
// consecutive runs score more, and a hit on the first character or right
// after a word boundary (space, /, -, _, .) earns a bonus.
func FuzzyMatch(query, target string) (bool, int) {
	if query == "" {
		return true, 0
	}

	q := strings.ToLower(query)
	t := strings.ToLower(target)

	qi := 0
	score := 0
	run := 0

	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			run = 0
			continue
		}
		qi++
		run++
		score += run
		if ti == 0 {
			score += 3
		} else if isBoundary(t[ti-1]) {
			score += 2
		}
	}

	return qi == len(q), score
}

func isBoundary(c byte) bool {
	switch c {
	case ' ', '/', '-', '_', '.':
		return true
	}
	return false
}
