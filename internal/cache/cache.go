// Package cache persists merged components keyed by normalized query. The
// cache is append-only: a repeated key is appended again and the most recent
// record wins on lookup.
package cache

import (
	"context"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = zerr.New("cache store closed")

// Record is one cached merge.
type Record struct {
	Query      string
	Components []string
	Code       string
}

// Store is a query-keyed cache of merged components.
type Store interface {
	// Lookup returns the most recent record for query. Read failures are
	// reported as a miss.
	Lookup(ctx context.Context, query string) (Record, bool)
	// Append adds r to the cache.
	Append(ctx context.Context, r Record) error
	// Records returns every stored record in insertion order.
	Records(ctx context.Context) ([]Record, error)
	Close() error
}

// NormalizeQuery returns the cache key for a query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Open returns the store for backend ("csv" or "sqlite") at path. logger
// receives read problems the store tolerates; it may be nil.
func Open(backend, path string, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "csv":
		return OpenCSV(path, logger)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// latest returns the last record in rs whose key matches query.
func latest(rs []Record, query string) (Record, bool) {
	key := NormalizeQuery(query)
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Query == key {
			return rs[i], true
		}
	}
	return Record{}, false
}
