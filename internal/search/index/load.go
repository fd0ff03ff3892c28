package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/novagen/internal/catalog"
)

// ErrStale marks an index built from a different catalog.
var ErrStale = errors.New("semantic index is stale")

// Load reads the index in dir. Entries must have unique names and a text
// hash, and the vector file must hold exactly one row per entry.
func Load(dir string) (*Index, error) {
	path := filepath.Join(dir, manifestFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", path, err)
	}
	m = withDefaults(m)
	if m.IndexVersion != indexVersion {
		return nil, fmt.Errorf("unsupported index version %d in %s", m.IndexVersion, path)
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("invalid dim in manifest: %d", m.Dim)
	}

	entries, err := loadEntries(filepath.Join(dir, m.EntriesFile))
	if err != nil {
		return nil, err
	}
	vectors, err := loadVectors(filepath.Join(dir, m.VectorFile), len(entries), m.Dim)
	if err != nil {
		return nil, err
	}
	return &Index{Manifest: m, Entries: entries, Vectors: vectors}, nil
}

// LoadCurrent loads the index in dir and fails with ErrStale when it was not
// built from cat.
func LoadCurrent(dir string, cat *catalog.Catalog) (*Index, error) {
	idx, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if Stale(idx, cat) {
		return idx, fmt.Errorf("%w: %s was built from another catalog", ErrStale, dir)
	}
	return idx, nil
}

func loadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open entries file %s: %w", path, err)
	}
	defer f.Close()

	var out []Entry
	dec := json.NewDecoder(f)
	for {
		var e Entry
		if err := dec.Decode(&e); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("invalid entries JSONL %s (entry %d): %w", path, len(out)+1, err)
		}
		out = append(out, e)
	}
	if err := validateEntries(out); err != nil {
		return nil, fmt.Errorf("invalid entries file %s: %w", path, err)
	}
	return out, nil
}

func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return errors.New("no entries")
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("entry %d has no name", i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate entry %q", name)
		}
		seen[name] = struct{}{}
		if e.TextHash == "" {
			return fmt.Errorf("entry %q has no text hash", name)
		}
	}
	return nil
}

func loadVectors(path string, nEntries, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	if want := int64(nEntries) * int64(dim) * 4; st.Size() != want {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (entries=%d dim=%d)", st.Size(), want, nEntries, dim)
	}

	out := make([]float32, nEntries*dim)
	if err := binary.Read(f, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}
