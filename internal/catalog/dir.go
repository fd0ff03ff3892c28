package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir builds a catalog from a directory of markdown component documents,
// one per file (any *.md below dir). Each document carries a YAML frontmatter
// header (component, description, category, tags) and one fenced code block
// per variant. Entries are ordered by relative path.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot stat catalog directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path is not a directory: %s", dir)
	}

	var paths []string
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		paths = append(paths, path)
		return nil
	}
	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan catalog directory: %w", err)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		fm, body := splitFrontmatter(string(b))

		name := strings.TrimSpace(fm.Component)
		if name == "" {
			name = strings.TrimSpace(fm.Name)
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		desc := strings.TrimSpace(fm.Description)
		if desc == "" {
			desc = inferDescriptionFromBody(body)
		}

		var variants []Variant
		for _, code := range fencedBlocks(body) {
			variants = append(variants, Variant{Code: code})
		}
		entries = append(entries, Entry{
			Name:        name,
			Description: desc,
			Category:    strings.TrimSpace(fm.Category),
			Tags:        fm.Tags,
			Variants:    variants,
		})
	}

	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog directory %s: %w", dir, err)
	}
	return c, nil
}
