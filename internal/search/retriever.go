package search

import (
	"strings"

	"github.com/kamusis/novagen/internal/catalog"
)

// DefaultCommon is the priority list used to pad short result sets.
var DefaultCommon = []string{"Button", "Input", "Card", "Badge", "Avatar"}

// Retriever selects the top components of a catalog for a query.
type Retriever struct {
	Catalog *catalog.Catalog
	// Common is tried, in order, before catalog order when padding. Names
	// absent from the catalog are skipped.
	Common []string
}

// NewRetriever returns a retriever over c. A nil common list means DefaultCommon.
func NewRetriever(c *catalog.Catalog, common []string) *Retriever {
	if common == nil {
		common = DefaultCommon
	}
	return &Retriever{Catalog: c, Common: common}
}

// Rank scores every entry against query and returns the positively scored
// ones, best first.
func (r *Retriever) Rank(query string) []ScoredCandidate {
	var out []ScoredCandidate
	for _, e := range r.Catalog.Entries() {
		s, why := score(e, query)
		if s <= 0 {
			continue
		}
		out = append(out, ScoredCandidate{Entry: e, Score: s, Why: why})
	}
	SortResults(out)
	return out
}

// TopComponents returns up to k distinct component names for query. Results
// are padded to min(k, catalog size) from the common list and then catalog
// order, so the call never fails.
func (r *Retriever) TopComponents(query string, k int) []string {
	if k <= 0 {
		return []string{}
	}
	names := r.Catalog.Names()
	if strings.TrimSpace(query) == "" {
		if len(names) > k {
			names = names[:k]
		}
		return names
	}

	out := make([]string, 0, k)
	seen := make(map[string]bool, k)
	add := func(name string) bool {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		return len(out) >= k
	}

	for _, c := range r.Rank(query) {
		if add(c.Entry.Name) {
			return out
		}
	}
	for _, name := range r.Common {
		if r.Catalog.Has(name) && add(name) {
			return out
		}
	}
	for _, name := range names {
		if add(name) {
			return out
		}
	}
	return out
}
