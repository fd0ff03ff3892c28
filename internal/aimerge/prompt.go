package aimerge

import (
	"fmt"
	"strings"
)

// Persona is the system message sent with every merge request.
const Persona = "You are an expert React/TypeScript engineer who creates " +
	"production-ready components by intelligently merging multiple " +
	"component snippets. You understand UI/UX patterns and create " +
	"cohesive, accessible, and well-structured components. " +
	"Always return complete, working TSX code with proper imports."

// BuildPrompt renders the user message for merging snippets into one
// component exported as exportName.
func BuildPrompt(snippets []string, query, exportName string) string {
	var blocks strings.Builder
	for i, snip := range snippets {
		fmt.Fprintf(&blocks, "\n### Component %d\n```tsx\n%s\n```\n", i+1, snip)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "USER REQUEST: \"%s\"\n", query)
	fmt.Fprintf(&b, "EXPORT FUNCTION NAME: %s\n\n", exportName)
	b.WriteString("You need to create ONE production-ready React component by **merging** the snippets below.\n\n")
	b.WriteString(blocks.String())
	b.WriteString("\n\nOUTPUT RULES (STRICT)\n")
	b.WriteString("- Wrap the ENTIRE file in one ```tsx fenced block.\n")
	b.WriteString("- Import ONLY components that appear in the JSX.\n")
	b.WriteString("- Every imported component (e.g. Avatar) must appear at least once in the JSX.\n")
	b.WriteString("- Declare every identifier you reference (e.g. const id = useId();).\n")
	b.WriteString("- Close ALL JSX tags and string / template literals.\n")
	fmt.Fprintf(&b, "- Export exactly one React function named %s.", exportName)
	return strings.TrimSpace(b.String())
}
