// Package merge composes several component snippets into one component file
// with best-effort text transforms. Nothing here parses source; inputs it
// cannot recognise pass through unchanged and no function returns an error
// for bad snippets.
package merge

import (
	"fmt"
	"strings"
)

// DefaultExportName is used when the caller supplies no export name.
const DefaultExportName = "Generated"

// DefaultModule is the design-system import path whose symbols are consolidated.
const DefaultModule = "@visa/nova-react"

// Strategy names a deterministic merge algorithm.
type Strategy string

const (
	// StrategyTemplate unwraps each snippet's returned markup and renders the
	// bodies into a template with one consolidated design-system import.
	StrategyTemplate Strategy = "template"
	// StrategyLayout wraps each snippet's markup in a layout picked from the
	// export name (form, profile or a generic stack).
	StrategyLayout Strategy = "layout"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTemplate:
		return StrategyTemplate, nil
	case StrategyLayout:
		return StrategyLayout, nil
	default:
		return "", fmt.Errorf("unknown merge strategy %q (want template or layout)", s)
	}
}

// Merger runs both strategies against one design-system module.
type Merger struct {
	module string
	tpl    *renderer
}

// New returns a Merger for module. templatePath optionally replaces the
// built-in template used by StrategyTemplate.
func New(module, templatePath string) (*Merger, error) {
	if strings.TrimSpace(module) == "" {
		module = DefaultModule
	}
	tpl, err := loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return &Merger{module: module, tpl: tpl}, nil
}

// Module returns the design-system import path.
func (m *Merger) Module() string { return m.module }

// Merge runs strategy over snippets. Unknown strategies use StrategyTemplate.
func (m *Merger) Merge(strategy Strategy, snippets []string, exportName string) string {
	if strategy == StrategyLayout {
		return m.MergeLayout(snippets, exportName)
	}
	return m.MergeVariants(snippets, exportName)
}

func exportOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultExportName
	}
	return name
}

func placeholder(exportName string) string {
	return "export default function " + exportName + "() { return <div>No components provided</div>; }"
}
