package search

import "github.com/kamusis/novagen/internal/catalog"

// ScoredCandidate is a catalog entry paired with its relevance to a query.
type ScoredCandidate struct {
	Entry catalog.Entry
	Score float64
	Why   string
}
