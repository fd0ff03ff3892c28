// Package catalog holds the static set of design-system components and their
// code variants. A Catalog is loaded once and never mutated.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ErrComponentNotFound is returned when a component name is absent from the catalog.
var ErrComponentNotFound = zerr.New("component not found")

//go:embed components.json
var defaultDocument []byte

// Variant is one concrete source rendering of a component.
type Variant struct {
	Code string `json:"code" yaml:"code"`
}

// Entry is one catalog component.
type Entry struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	Variants    []Variant
}

// document is the on-disk shape of an entry. Catalog data keys the name
// as "component"; "name" is accepted as well.
type document struct {
	Component   string    `json:"component" yaml:"component"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	Tags        []string  `json:"tags" yaml:"tags"`
	Variants    []Variant `json:"variants" yaml:"variants"`
}

// Catalog is an ordered, name-unique collection of entries.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

// New builds a catalog from entries, preserving their order.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}
		if len(e.Variants) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no variants", name)
		}
		e.Name = name
		c.byName[name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultDocument, "json")
}

// Load reads a catalog from path. An empty path loads the default catalog and
// a directory is read with LoadDir. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return LoadDir(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog document in the given format ("json" or "yaml").
func Parse(data []byte, format string) (*Catalog, error) {
	var docs []document
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
	case "json":
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		name := d.Component
		if name == "" {
			name = d.Name
		}
		entries = append(entries, Entry{
			Name:        name,
			Description: d.Description,
			Category:    d.Category,
			Tags:        d.Tags,
			Variants:    d.Variants,
		})
	}
	return New(entries)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns entry names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, error) {
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, zerr.With(zerr.Wrap(ErrComponentNotFound, "catalog lookup"), "component", name)
	}
	return c.entries[i], nil
}

// FirstVariant returns the code of the first variant of name. Only the first
// variant takes part in merging.
func (c *Catalog) FirstVariant(name string) (string, error) {
	e, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	return e.Variants[0].Code, nil
}

// Snippets returns the first variant of each name, in order.
func (c *Catalog) Snippets(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		code, err := c.FirstVariant(n)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}
