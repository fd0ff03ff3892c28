package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/embeddings"
)

// BuildOptions controls index building.
type BuildOptions struct {
	OutDir    string
	Force     bool
	Normalize bool
}

// Build embeds every catalog entry with prov and writes the index to
// opts.OutDir.
//
// The build is incremental when an existing index built by the same model is
// present in OutDir (unless Force is true): entries whose canonical text is
// unchanged keep their stored vector. It is the caller's responsibility to
// apply an atomic swap strategy.
func Build(ctx context.Context, prov embeddings.Provider, cat *catalog.Catalog, opts BuildOptions) (*Index, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("catalog has no entries")
	}

	reuse := map[string]Entry{}
	reuseVec := map[string][]float32{}
	if old, err := Load(opts.OutDir); err == nil && !opts.Force && old.Manifest.ModelID == prov.ModelID() {
		for i, e := range old.Entries {
			start := i * old.Manifest.Dim
			end := start + old.Manifest.Dim
			if end <= len(old.Vectors) {
				reuse[e.Name] = e
				v := make([]float32, old.Manifest.Dim)
				copy(v, old.Vectors[start:end])
				reuseVec[e.Name] = v
			}
		}
	}

	var (
		entries []Entry
		vectors []float32
		dim     int
	)

	for _, ce := range cat.Entries() {
		text := CanonicalText(ce)
		h := TextHash(text)

		if prev, ok := reuse[ce.Name]; ok && prev.TextHash == h {
			v := reuseVec[ce.Name]
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == dim {
				entries = append(entries, prev)
				vectors = append(vectors, v...)
				continue
			}
		}

		emb, err := prov.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("cannot embed %s: %w", ce.Name, err)
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return nil, fmt.Errorf("embedding dim changed mid-run: got %d want %d", len(emb), dim)
		}
		if opts.Normalize {
			emb = NormalizeL2(emb)
		}

		entries = append(entries, EntryFromCatalog(ce, h))
		vectors = append(vectors, emb...)
	}

	manifest := Manifest{
		IndexVersion:  1,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		CatalogDigest: CatalogDigest(cat),
		ModelID:       prov.ModelID(),
		Dim:           dim,
		Normalize:     opts.Normalize,
		VectorFile:    "vectors.f32",
		EntriesFile:   "entries.jsonl",
	}

	if err := Write(opts.OutDir, manifest, entries, vectors); err != nil {
		return nil, err
	}
	return &Index{Manifest: manifest, Entries: entries, Vectors: vectors}, nil
}

// Stale reports whether idx was built from a different catalog.
func Stale(idx *Index, cat *catalog.Catalog) bool {
	return idx.Manifest.CatalogDigest != CatalogDigest(cat)
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
