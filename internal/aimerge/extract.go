package aimerge

import (
	"fmt"
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// minCodeLen is the shortest reply accepted as a component file.
const minCodeLen = 50

var (
	fencedRE        = regexp.MustCompile("```(?:tsx|typescript|jsx|javascript|ts|js)?\\n([\\s\\S]*?)\\n```")
	importExportRE  = regexp.MustCompile(`(?m)(import[\s\S]+?export default function[\s\S]+?^})`)
	defaultExportRE = regexp.MustCompile(`(?m)(export default function[\s\S]+?^})`)
)

// ExtractCode pulls the component source out of a free-form reply. It tries,
// in order: the first fenced block, an import..default-export span, a bare
// default export (given a React import), and finally the reply without fences.
func ExtractCode(raw string) string {
	if m := fencedRE.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := importExportRE.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := defaultExportRE.FindStringSubmatch(raw); m != nil {
		code := strings.TrimSpace(m[1])
		if !strings.HasPrefix(code, "import") {
			code = "import React from 'react';\n" + code
		}
		return code
	}
	return strings.TrimSpace(strings.ReplaceAll(raw, "```", ""))
}

// ImportedSymbols returns the names imported in braces from module, in order.
// Aliased imports yield the local name.
func ImportedSymbols(code, module string) []string {
	re := regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]` + regexp.QuoteMeta(module) + `['"]`)
	var out []string
	for _, m := range re.FindAllStringSubmatch(code, -1) {
		for _, sym := range strings.Split(m[1], ",") {
			sym = strings.TrimSpace(sym)
			if _, alias, ok := strings.Cut(sym, " as "); ok {
				sym = strings.TrimSpace(alias)
			}
			if sym != "" {
				out = append(out, sym)
			}
		}
	}
	return out
}

// Validate checks that every symbol imported from module is rendered as a
// tag and that code is long enough to be a component.
func Validate(code, module string) error {
	var unused []string
	for _, sym := range ImportedSymbols(code, module) {
		tag := regexp.MustCompile(`<\s*` + regexp.QuoteMeta(sym) + `\b`)
		if !tag.MatchString(code) {
			unused = append(unused, sym)
		}
	}
	if len(unused) > 0 {
		return zerr.With(zerr.Wrap(ErrValidationFailure, fmt.Sprintf("unused imports: %s", strings.Join(unused, ", "))), "unused", unused)
	}
	if len(strings.TrimSpace(code)) < minCodeLen {
		return zerr.With(zerr.Wrap(ErrValidationFailure, "unusable code"), "length", len(code))
	}
	return nil
}
