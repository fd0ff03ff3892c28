package cache

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

var csvHeader = []string{"query", "components", "code"}

const lockRetryDelay = 50 * time.Millisecond

// CSVStore keeps records in a CSV file with a query,components,code header.
// Components are stored as a JSON array. Code is stored raw unless it holds a
// carriage return, which CSV readers fold into the line break; such code is
// stored as a JSON string. Appends are serialised across processes with a
// lock file next to the cache.
type CSVStore struct {
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

// OpenCSV returns a CSV store at path, creating its directory. Unreadable
// rows are skipped and reported to logger, which may be nil.
func OpenCSV(path string, logger *zap.Logger) (*CSVStore, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" || p == "." {
		return nil, errors.New("missing cache path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: p, lock: flock.New(p + ".lock"), logger: logger}, nil
}

// Path returns the cache file path.
func (s *CSVStore) Path() string { return s.path }

// Lookup rescans the file on every call.
func (s *CSVStore) Lookup(ctx context.Context, query string) (Record, bool) {
	rs, err := s.Records(ctx)
	if err != nil {
		return Record{}, false
	}
	return latest(rs, query)
}

// Records parses the whole file. A missing file is empty; a file whose header
// or quoting cannot be parsed yields an error. Rows with malformed components
// are skipped.
func (s *CSVStore) Records(_ context.Context) ([]Record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("cannot read cache %s: %w", s.path, err)
	}
	return parseCSV(b, s.logger)
}

func parseCSV(b []byte, logger *zap.Logger) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("cannot parse cache header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, name := range csvHeader {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("cache header missing column %q", name)
		}
	}

	var out []Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot parse cache row: %w", err)
		}
		field := func(name string) string {
			if i := cols[name]; i < len(row) {
				return row[i]
			}
			return ""
		}
		var comps []string
		if err := json.Unmarshal([]byte(field("components")), &comps); err != nil {
			line, _ := r.FieldPos(0)
			logger.Warn("skipping unreadable cache row",
				zap.Int("line", line),
				zap.String("query", field("query")),
				zap.Error(err))
			continue
		}
		out = append(out, Record{Query: field("query"), Components: comps, Code: decodeCode(field("code"))})
	}
	return out, nil
}

// Append writes r as one row, writing the header first if the file is new or
// empty.
func (s *CSVStore) Append(ctx context.Context, r Record) error {
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("cannot acquire cache lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("cannot acquire cache lock %s", s.lock.Path())
	}
	defer func() { _ = s.lock.Unlock() }()

	comps := r.Components
	if comps == nil {
		comps = []string{}
	}
	encoded, err := json.Marshal(comps)
	if err != nil {
		return fmt.Errorf("cannot encode components: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open cache %s: %w", s.path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot stat cache %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(slices.Clone(csvHeader)); err != nil {
			return fmt.Errorf("cannot write cache header: %w", err)
		}
	}
	if err := w.Write([]string{NormalizeQuery(r.Query), string(encoded), encodeCode(r.Code)}); err != nil {
		return fmt.Errorf("cannot write cache row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot write cache %s: %w", s.path, err)
	}
	return f.Close()
}

// encodeCode JSON-quotes code holding a carriage return, and code that would
// otherwise read back as a quoted string.
func encodeCode(code string) string {
	if !strings.Contains(code, "\r") && !isQuoted(code) {
		return code
	}
	b, _ := json.Marshal(code)
	return string(b)
}

// decodeCode reverses encodeCode. Rows written raw decode unchanged.
func decodeCode(cell string) string {
	if !isQuoted(cell) {
		return cell
	}
	var code string
	if err := json.Unmarshal([]byte(cell), &code); err != nil {
		return cell
	}
	return code
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// Close releases the lock file handle.
func (s *CSVStore) Close() error {
	return s.lock.Close()
}
