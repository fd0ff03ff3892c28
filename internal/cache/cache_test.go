package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// backends runs fn against a fresh store of every backend.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	for _, backend := range []string{"csv", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(backend, filepath.Join(t.TempDir(), "cache."+backend), zaptest.NewLogger(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			fn(t, s)
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	require.Equal(t, "login form", NormalizeQuery("  Login Form\n"))
	require.Equal(t, "", NormalizeQuery("   "))
}

func TestStore_MissThenHit(t *testing.T) {
	for name, code := range map[string]string{
		"lf":      "import { Button } from '@visa/nova-react';\n\nexport default function LoginForm() {\n  return (<Button>\"Go\", now</Button>);\n}",
		"crlf":    "import { Button } from '@visa/nova-react';\r\n\r\nexport default function LoginForm() {\r\n  return (<Button />);\r\n}\r\n",
		"lone cr": "line1\rline2\r",
		"quoted":  "\"just a string\"",
	} {
		t.Run(name, func(t *testing.T) {
			backends(t, func(t *testing.T, s Store) {
				ctx := context.Background()
				_, ok := s.Lookup(ctx, "login form")
				require.False(t, ok)

				require.NoError(t, s.Append(ctx, Record{Query: "login form", Components: []string{"Input", "Button"}, Code: code}))

				got, ok := s.Lookup(ctx, "  LOGIN form ")
				require.True(t, ok)
				want := Record{Query: "login form", Components: []string{"Input", "Button"}, Code: code}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("Lookup mismatch (-want +got):\n%s", diff)
				}
			})
		})
	}
}

func TestStore_LastDuplicateWins(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Append(ctx, Record{Query: "card", Components: []string{"Card"}, Code: "first"}))
		require.NoError(t, s.Append(ctx, Record{Query: "other", Components: nil, Code: "x"}))
		require.NoError(t, s.Append(ctx, Record{Query: "Card", Components: []string{"Card", "Badge"}, Code: "second"}))

		got, ok := s.Lookup(ctx, "card")
		require.True(t, ok)
		require.Equal(t, "second", got.Code)
		require.Equal(t, []string{"Card", "Badge"}, got.Components)

		all, err := s.Records(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, []string{}, all[1].Components)
	})
}

func TestCSVStore_HeaderWrittenOnce(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "pattern-dataset.csv")
	s, err := OpenCSV(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, Record{Query: "a", Components: []string{"A"}, Code: "multi\nline"}))
	require.NoError(t, s.Append(ctx, Record{Query: "b", Components: []string{"B"}, Code: "b"}))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), "query,components,code\n"), string(b))
	require.Equal(t, 1, strings.Count(string(b), "query,components,code"))
	require.Contains(t, string(b), `"[""A""]"`)
}

func TestCSVStore_ReadsSpacedJSONRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pattern-dataset.csv")
	body := "query,components,code\r\nprofile card,\"[\"\"Avatar\"\", \"\"Card\"\"]\",\"<Avatar />\"\r\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	s, err := OpenCSV(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	got, ok := s.Lookup(context.Background(), "Profile Card")
	require.True(t, ok)
	require.Equal(t, []string{"Avatar", "Card"}, got.Components)
	require.Equal(t, "<Avatar />", got.Code)
}

func TestCSVStore_CorruptFileIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"wrong header": "a,b\n1,2\n",
		"bad quoting":  "query,components,code\n\"q,[],x\n",
	} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "c.csv")
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			s, err := OpenCSV(p, zaptest.NewLogger(t))
			require.NoError(t, err)

			_, ok := s.Lookup(context.Background(), "q")
			require.False(t, ok)
			_, err = s.Records(context.Background())
			require.Error(t, err)
		})
	}
}

func TestCSVStore_SkipsMalformedRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.csv")
	body := "query,components,code\nq,not-json,broken\nok,[],fine\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	s, err := OpenCSV(p, zap.New(core))
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := s.Lookup(ctx, "q")
	require.False(t, ok)
	got, ok := s.Lookup(ctx, "ok")
	require.True(t, ok)
	require.Equal(t, "fine", got.Code)

	require.NoError(t, s.Append(ctx, Record{Query: "later", Components: []string{"Card"}, Code: "<Card />"}))
	rs, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "later", rs[1].Query)

	entries := logs.FilterMessage("skipping unreadable cache row").All()
	require.NotEmpty(t, entries)
	require.Equal(t, int64(2), entries[0].ContextMap()["line"])
}

func TestCSVStore_ReadsRawCodeWithQuotes(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.csv")
	body := "query,components,code\nq,[],\"\"\"a\"\" + \"\"b\"\"\"\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	s, err := OpenCSV(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	got, ok := s.Lookup(context.Background(), "q")
	require.True(t, ok)
	require.Equal(t, `"a" + "b"`, got.Code)
}

func TestCSVStore_EmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.csv")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	s, err := OpenCSV(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	rs, err := s.Records(context.Background())
	require.NoError(t, err)
	require.Empty(t, rs)

	require.NoError(t, s.Append(context.Background(), Record{Query: "q", Code: "c"}))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), "query,components,code\n"))
}

func TestCSVStore_ConcurrentAppends(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.csv")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// separate handles contend on the lock file like separate processes
			s, err := OpenCSV(p, zaptest.NewLogger(t))
			if err != nil {
				t.Error(err)
				return
			}
			defer s.Close()
			if err := s.Append(ctx, Record{Query: "q", Components: []string{"C"}, Code: strings.Repeat("x", 100*(i+1))}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	s, err := OpenCSV(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	rs, err := s.Records(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 8)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", filepath.Join(t.TempDir(), "x"), nil)
	require.Error(t, err)
}

func TestSQLiteStore_ClosedStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "c.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Append(context.Background(), Record{Query: "q"}), ErrClosed)
	_, ok := s.Lookup(context.Background(), "q")
	require.False(t, ok)
}
