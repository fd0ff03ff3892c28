package merge

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/default.tsx.tmpl
var defaultTemplate string

var (
	// importRE matches one import declaration, which may span lines.
	importRE = regexp.MustCompile(`(?m)^import\s+([\s\S]+?)\s+from\s+['"]([^'"]+)['"];?$`)
	namedRE  = regexp.MustCompile(`\{([^}]+)\}`)

	// wrapperRE finds the first exported arrow component returning ( ... ).
	wrapperRE = regexp.MustCompile(`export\s+(?:const|function)\s+[^{=]+?=\s*(?:\([^()]*\)\s*=>\s*)?\{[^{}]*?return\s*\(\s*(?P<body>[\s\S]+?)\);?\s*\}`)
	// funcWrapperRE covers `export [default] function Name(props) { return ( ... ) }`.
	funcWrapperRE = regexp.MustCompile(`export\s+(?:default\s+)?function\s+\w*\s*\([^)]*\)\s*\{[^{}]*?return\s*\(\s*(?P<body>[\s\S]+?)\);?\s*\}`)
)

// templateData is what the merge template renders.
type templateData struct {
	Module       string
	ImportBlock  string
	ExtraImports []string
	ExportName   string
	BodyBlock    string
}

type renderer struct {
	tpl      *template.Template
	fallback *template.Template
}

func loadTemplate(path string) (*renderer, error) {
	builtin := template.Must(template.New("default.tsx").Parse(defaultTemplate))
	r := &renderer{tpl: builtin, fallback: builtin}
	if strings.TrimSpace(path) == "" {
		return r, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read merge template %s: %w", path, err)
	}
	custom, err := template.New("custom.tsx").Option("missingkey=error").Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("invalid merge template %s: %w", path, err)
	}
	if err := custom.Execute(&bytes.Buffer{}, templateData{ExportName: DefaultExportName}); err != nil {
		return nil, fmt.Errorf("invalid merge template %s: %w", path, err)
	}
	r.tpl = custom
	return r, nil
}

func (r *renderer) render(d templateData) string {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, d); err != nil {
		buf.Reset()
		_ = r.fallback.Execute(&buf, d)
	}
	return strings.TrimLeft(buf.String(), "\n")
}

// importSet accumulates design-system symbols and foreign import lines.
type importSet struct {
	module  string
	symbols map[string]struct{}
	foreign []string
}

// strip removes every import declaration from code. Symbols imported from the
// design-system module are collected; other declarations are kept verbatim in
// encounter order.
func (s *importSet) strip(code string) string {
	var out strings.Builder
	last := 0
	for _, m := range importRE.FindAllStringSubmatchIndex(code, -1) {
		out.WriteString(code[last:m[0]])
		last = m[1]

		spec, mod := code[m[2]:m[3]], code[m[4]:m[5]]
		if mod != s.module {
			s.foreign = append(s.foreign, code[m[0]:m[1]])
			continue
		}
		def, _, _ := strings.Cut(spec, "{")
		s.add(strings.TrimSuffix(strings.TrimSpace(def), ","))
		if nm := namedRE.FindStringSubmatch(spec); nm != nil {
			for _, sym := range strings.Split(nm[1], ",") {
				s.add(sym)
			}
		}
	}
	out.WriteString(code[last:])
	return strings.TrimSpace(out.String())
}

func (s *importSet) add(sym string) {
	if sym = strings.TrimSpace(sym); sym != "" {
		s.symbols[sym] = struct{}{}
	}
}

func (s *importSet) sortedSymbols() []string {
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// unwrap returns the markup returned by the first exported component in code,
// or code itself when no component shape is recognised.
func unwrap(code string) string {
	body, start := "", -1
	for _, re := range []*regexp.Regexp{wrapperRE, funcWrapperRE} {
		m := re.FindStringSubmatchIndex(code)
		if m == nil || (start >= 0 && m[0] >= start) {
			continue
		}
		i := 2 * re.SubexpIndex("body")
		body, start = code[m[i]:m[i+1]], m[0]
	}
	if start < 0 {
		return strings.TrimSpace(code)
	}
	return strings.TrimSpace(body)
}

// MergeVariants merges snippets with the template strategy.
func (m *Merger) MergeVariants(snippets []string, exportName string) string {
	exportName = exportOrDefault(exportName)
	if len(snippets) == 0 {
		return placeholder(exportName)
	}

	imports := &importSet{module: m.module, symbols: map[string]struct{}{}}
	bodies := make([]string, 0, len(snippets))
	for _, snip := range snippets {
		bodies = append(bodies, unwrap(imports.strip(snip)))
	}

	return m.tpl.render(templateData{
		Module:       m.module,
		ImportBlock:  strings.Join(imports.sortedSymbols(), ", "),
		ExtraImports: imports.foreign,
		ExportName:   exportName,
		BodyBlock:    strings.Join(bodies, "\n\n"),
	})
}
