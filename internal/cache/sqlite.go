package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in an append-only SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" || p == "." {
		return nil, errors.New("missing cache path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache dir: %w", err)
	}

	// modernc.org/sqlite uses a file path as DSN.
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=3000;`,
		`CREATE TABLE IF NOT EXISTS cache_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  query TEXT NOT NULL,
  components TEXT NOT NULL,
  code TEXT NOT NULL,
  created_at_unix_ms INTEGER NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_cache_records_query ON cache_records(query, id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("cannot initialise cache schema: %w", err)
		}
	}
	return nil
}

// Lookup returns the most recently inserted row for query.
func (s *SQLiteStore) Lookup(ctx context.Context, query string) (Record, bool) {
	if s == nil || s.db == nil {
		return Record{}, false
	}
	var (
		r     Record
		comps string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT query, components, code FROM cache_records
WHERE query = ?
ORDER BY id DESC
LIMIT 1
`, NormalizeQuery(query)).Scan(&r.Query, &comps, &r.Code)
	if err != nil {
		return Record{}, false
	}
	if err := json.Unmarshal([]byte(comps), &r.Components); err != nil {
		return Record{}, false
	}
	return r, true
}

// Append inserts r.
func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	comps := r.Components
	if comps == nil {
		comps = []string{}
	}
	encoded, err := json.Marshal(comps)
	if err != nil {
		return fmt.Errorf("cannot encode components: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO cache_records(query, components, code, created_at_unix_ms) VALUES(?, ?, ?, ?)
`, NormalizeQuery(r.Query), string(encoded), r.Code, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("cannot insert cache record: %w", err)
	}
	return nil
}

// Records returns every row in insertion order.
func (s *SQLiteStore) Records(ctx context.Context) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT query, components, code FROM cache_records ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r     Record
			comps string
		)
		if err := rows.Scan(&r.Query, &comps, &r.Code); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(comps), &r.Components); err != nil {
			return nil, fmt.Errorf("cannot parse cached components for %q: %w", r.Query, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
