package catalog

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML header of a component document.
type frontmatter struct {
	Component   string   `yaml:"component"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
}

func splitFrontmatter(content string) (frontmatter, string) {
	s := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(s, "---") {
		return frontmatter{}, content
	}

	parts := strings.SplitN(s, "---", 3)
	if len(parts) < 3 {
		return frontmatter{}, content
	}

	fmText := strings.TrimSpace(parts[1])
	body := strings.TrimPrefix(parts[2], "\n")

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return frontmatter{}, content
	}
	return fm, body
}

// fencedBlocks returns the contents of every ``` fenced block in body whose
// info string is a JS/TS dialect (or empty).
func fencedBlocks(body string) []string {
	var (
		out     []string
		cur     []string
		inBlock bool
		keep    bool
	)
	for _, ln := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(ln)
		if !inBlock {
			if info, ok := strings.CutPrefix(trimmed, "```"); ok {
				inBlock = true
				cur = cur[:0]
				switch strings.ToLower(strings.TrimSpace(info)) {
				case "", "tsx", "jsx", "ts", "js", "typescript", "javascript":
					keep = true
				default:
					keep = false
				}
			}
			continue
		}
		if trimmed == "```" {
			inBlock = false
			if keep {
				out = append(out, strings.Join(cur, "\n")+"\n")
			}
			continue
		}
		cur = append(cur, ln)
	}
	return out
}

func inferDescriptionFromBody(body string) string {
	inBlock := false
	for _, ln := range strings.Split(body, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock || ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		return ln
	}
	return ""
}
