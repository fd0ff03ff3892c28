package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kamusis/novagen/internal/catalog"
)

const (
	weightNameInQuery = 20.0
	weightNameWord    = 10.0
	weightDescWord    = 3.0
	weightTagWord     = 5.0
	weightPatternHit  = 15.0
	weightPatternNear = 8.0
)

// uiPatterns maps an intent keyword to the component names it implies.
var uiPatterns = map[string][]string{
	"form":       {"input", "button", "checkbox", "textfield", "select", "textarea", "label"},
	"login":      {"input", "button", "textfield", "checkbox"},
	"profile":    {"avatar", "badge", "card", "image"},
	"navigation": {"button", "link", "breadcrumb", "menu"},
	"layout":     {"card", "container", "grid", "box"},
	"data":       {"table", "list", "card", "grid"},
	"user":       {"avatar", "badge", "profile", "card"},
}

// Score returns the relevance of e to query. A query without words scores 0.
func Score(e catalog.Entry, query string) float64 {
	s, _ := score(e, query)
	return s
}

func score(e catalog.Entry, query string) (float64, string) {
	q := strings.ToLower(query)
	qw := wordSet(q)
	if len(qw) == 0 {
		return 0, ""
	}

	var (
		total float64
		why   []string
	)
	name := strings.ToLower(e.Name)
	if strings.Contains(q, name) {
		total += weightNameInQuery
		why = append(why, "name")
	}
	if n := overlap(qw, wordSet(name)); n > 0 {
		total += float64(n) * weightNameWord
		why = append(why, fmt.Sprintf("name-words:%d", n))
	}
	if n := overlap(qw, wordSet(e.Description)); n > 0 {
		total += float64(n) * weightDescWord
		why = append(why, fmt.Sprintf("description:%d", n))
	}
	if n := overlap(qw, wordSet(e.Tags...)); n > 0 {
		total += float64(n) * weightTagWord
		why = append(why, fmt.Sprintf("tags:%d", n))
	}

	for pattern, related := range uiPatterns {
		if !strings.Contains(q, pattern) {
			continue
		}
		switch {
		case slices.Contains(related, name):
			total += weightPatternHit
			why = append(why, "pattern:"+pattern)
		case slices.ContainsFunc(related, func(r string) bool { return strings.Contains(name, r) }):
			total += weightPatternNear
			why = append(why, "pattern~"+pattern)
		}
	}
	// map iteration order is random; keep the explanation stable
	slices.Sort(why)
	return total, strings.Join(why, ",")
}
