package merge

import (
	"regexp"
	"sort"
	"strings"
)

const jsxPlaceholder = "<div>Error extracting JSX</div>"

var (
	importLineRE = regexp.MustCompile(`(?m)^import\s+.*?;?$`)
	returnJSXRE  = regexp.MustCompile(`(?s)return\s*\(?([^}]+)\)?;?\s*}`)
	leadParenRE  = regexp.MustCompile(`^\s*\(\s*`)
	trailParenRE = regexp.MustCompile(`\s*\)?\s*;?\s*$`)
	constDeclRE  = regexp.MustCompile(`\bconst\s+\w+\s*=\s*[^;]+;`)
)

// layout is the wrapper chosen from the export name.
type layout int

const (
	layoutGeneric layout = iota
	layoutForm
	layoutProfile
)

func classify(exportName string) layout {
	n := strings.ToLower(exportName)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(n, w) {
				return true
			}
		}
		return false
	}
	switch {
	case containsAny("form", "login", "signup", "register"):
		return layoutForm
	case containsAny("profile", "user", "account"):
		return layoutProfile
	default:
		return layoutGeneric
	}
}

// extractJSX returns the markup after the first return in code.
func extractJSX(code string) string {
	m := returnJSXRE.FindStringSubmatch(code)
	if m == nil {
		return jsxPlaceholder
	}
	jsx := strings.TrimSpace(m[1])
	jsx = leadParenRE.ReplaceAllString(jsx, "")
	jsx = trailParenRE.ReplaceAllString(jsx, "")
	if jsx == "" {
		return jsxPlaceholder
	}
	return jsx
}

// localConsts returns the non-exported const declarations of code. An exported
// declaration is skipped by its keyword only, so consts declared inside an
// exported component body are still found.
func localConsts(code string) []string {
	var out []string
	for pos := 0; pos < len(code); {
		loc := constDeclRE.FindStringIndex(code[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if strings.HasSuffix(strings.TrimRight(code[:start], " \t\n"), "export") {
			pos = start + len("const")
			continue
		}
		out = append(out, code[start:end])
		pos = end
	}
	return out
}

func importLines(snippets []string) []string {
	set := map[string]struct{}{}
	for _, s := range snippets {
		for _, ln := range importLineRE.FindAllString(s, -1) {
			set[strings.TrimRight(strings.TrimSpace(ln), ";")+";"] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for ln := range set {
		out = append(out, ln)
	}
	sort.Strings(out)
	return out
}

func wrapItem(class, jsx string) string {
	return "      <div className=\"" + class + "\">\n        " + jsx + "\n      </div>"
}

func formLayout(parts []string) string {
	items := make([]string, 0, len(parts))
	for _, jsx := range parts {
		l := strings.ToLower(jsx)
		switch {
		case strings.Contains(l, "input") || strings.Contains(l, "textfield"):
			items = append(items, wrapItem("mb-4", jsx))
		case strings.Contains(l, "button"):
			items = append(items, wrapItem("mt-6", jsx))
		default:
			items = append(items, wrapItem("mb-3", jsx))
		}
	}
	return "    <div className=\"max-w-md mx-auto p-6 bg-white rounded-lg shadow-md\">\n" +
		"      <form className=\"space-y-4\">\n" +
		strings.Join(items, "\n") + "\n" +
		"      </form>\n" +
		"    </div>"
}

func profileLayout(parts []string) string {
	items := make([]string, 0, len(parts))
	for _, jsx := range parts {
		l := strings.ToLower(jsx)
		switch {
		case strings.Contains(l, "avatar"):
			items = append(items, wrapItem("flex justify-center mb-4", jsx))
		case strings.Contains(l, "badge"):
			items = append(items, wrapItem("flex flex-wrap gap-2 mb-3", jsx))
		default:
			items = append(items, wrapItem("mb-3", jsx))
		}
	}
	return "    <div className=\"max-w-sm mx-auto p-6 bg-white rounded-lg shadow-lg text-center\">\n" +
		strings.Join(items, "\n") + "\n" +
		"    </div>"
}

func genericLayout(parts []string) string {
	items := make([]string, 0, len(parts))
	for _, jsx := range parts {
		items = append(items, wrapItem("mb-4", jsx))
	}
	return "    <div className=\"p-6 space-y-4\">\n" +
		strings.Join(items, "\n") + "\n" +
		"    </div>"
}

// MergeLayout merges snippets with the layout strategy.
func (m *Merger) MergeLayout(snippets []string, exportName string) string {
	exportName = exportOrDefault(exportName)
	if len(snippets) == 0 {
		return placeholder(exportName)
	}

	var (
		parts []string
		vars  []string
		seen  = map[string]bool{}
	)
	for _, s := range snippets {
		parts = append(parts, extractJSX(s))
		for _, v := range localConsts(s) {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	}

	var main string
	switch classify(exportName) {
	case layoutForm:
		main = formLayout(parts)
	case layoutProfile:
		main = profileLayout(parts)
	default:
		main = genericLayout(parts)
	}

	return strings.Join(importLines(snippets), "\n") + "\n\n" +
		"export default function " + exportName + "() {\n" +
		"  " + strings.Join(vars, "\n  ") + "\n\n" +
		"  return (\n" +
		main + "\n" +
		"  );\n" +
		"}"
}
