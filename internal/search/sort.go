package search

import "sort"

// SortResults sorts candidates by score (descending). Ties keep their input
// order, which is catalog order for Rank.
func SortResults(results []ScoredCandidate) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
