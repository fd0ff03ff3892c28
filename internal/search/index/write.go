package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kamusis/novagen/internal/catalog"
)

const (
	indexVersion = 1

	manifestFile       = "index_manifest.json"
	defaultVectorFile  = "vectors.f32"
	defaultEntriesFile = "entries.jsonl"
)

// Write writes index artifacts to dir. The manifest is written last, so a
// directory whose write was interrupted does not load.
func Write(dir string, manifest Manifest, entries []Entry, vectors []float32) error {
	if manifest.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", manifest.Dim)
	}
	if err := validateEntries(entries); err != nil {
		return err
	}
	if len(vectors) != len(entries)*manifest.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(vectors), len(entries)*manifest.Dim)
	}
	manifest = withDefaults(manifest)
	if manifest.CreatedAt == "" {
		manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	if err := writeFile(filepath.Join(dir, manifest.EntriesFile), func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, manifest.VectorFile), func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, vectors)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, manifestFile), func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifest)
	})
}

// writeFile writes path through a temp file in the same directory and
// renames it into place.
func writeFile(path string, fill func(w *bufio.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("cannot install %s: %w", path, err)
	}
	return nil
}

func withDefaults(m Manifest) Manifest {
	if m.IndexVersion == 0 {
		m.IndexVersion = indexVersion
	}
	if m.VectorFile == "" {
		m.VectorFile = defaultVectorFile
	}
	if m.EntriesFile == "" {
		m.EntriesFile = defaultEntriesFile
	}
	return m
}

// EntryFromCatalog converts a catalog entry to its index row.
func EntryFromCatalog(e catalog.Entry, textHash string) Entry {
	return Entry{
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Tags:        e.Tags,
		TextHash:    textHash,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
