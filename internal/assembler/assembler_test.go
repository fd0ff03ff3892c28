package assembler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kamusis/novagen/internal/aimerge"
	"github.com/kamusis/novagen/internal/cache"
	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/merge"
	"github.com/kamusis/novagen/internal/search"
)

type countingRetriever struct {
	inner Retriever
	calls int
}

func (r *countingRetriever) TopComponents(q string, k int) []string {
	r.calls++
	return r.inner.TopComponents(q, k)
}

type countingMerger struct {
	inner DirectMerger
	calls int
}

func (m *countingMerger) Merge(s merge.Strategy, snippets []string, name string) string {
	m.calls++
	return m.inner.Merge(s, snippets, name)
}

type fakeGenerative struct {
	enabled bool
	result  aimerge.Result
	calls   int
}

func (f *fakeGenerative) Enabled() bool { return f.enabled }

func (f *fakeGenerative) Merge(context.Context, []string, string, string) aimerge.Result {
	f.calls++
	return f.result
}

// failingStore is a cache whose writes always fail.
type failingStore struct{ cache.Store }

func (failingStore) Append(context.Context, cache.Record) error { return errors.New("disk full") }

type fixture struct {
	pipeline  *Pipeline
	retriever *countingRetriever
	direct    *countingMerger
	store     cache.Store
	merger    *merge.Merger
}

func newFixture(t *testing.T, gen GenerativeMerger) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store, err := cache.OpenCSV(filepath.Join(t.TempDir(), "pattern-dataset.csv"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	m, err := merge.New("", "")
	require.NoError(t, err)

	f := &fixture{
		retriever: &countingRetriever{inner: search.NewRetriever(cat, nil)},
		direct:    &countingMerger{inner: m},
		store:     store,
		merger:    m,
	}
	f.pipeline, err = New(Options{
		Catalog:    cat,
		Retriever:  f.retriever,
		Cache:      store,
		Direct:     f.direct,
		Generative: gen,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return f
}

func TestBuildSnippet_CacheIdempotence(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.pipeline.BuildSnippet(ctx, "Login Form")
	require.NoError(t, err)
	require.Equal(t, SourceDirect, first.Source)
	require.Len(t, first.Components, DefaultTopK)
	require.Contains(t, first.Code, "export default function LoginForm()")
	require.Equal(t, 1, f.retriever.calls)
	require.Equal(t, 1, f.direct.calls)

	second, err := f.pipeline.BuildSnippet(ctx, "  login FORM ")
	require.NoError(t, err)
	require.Equal(t, SourceCache, second.Source)
	require.Equal(t, first.Code, second.Code)
	require.Equal(t, first.Components, second.Components)
	require.Equal(t, 1, f.retriever.calls)
	require.Equal(t, 1, f.direct.calls)

	rec, ok := f.store.Lookup(ctx, "login form")
	require.True(t, ok)
	require.Equal(t, "login form", rec.Query)
}

func TestBuildSnippet_DirectUsesTemplateStrategy(t *testing.T) {
	f := newFixture(t, &fakeGenerative{enabled: false})
	res, err := f.pipeline.BuildSnippet(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"Button", "Input", "Checkbox"}, res.Components)

	snippets, err := f.pipeline.opts.Catalog.Snippets(res.Components)
	require.NoError(t, err)
	require.Equal(t, f.merger.MergeVariants(snippets, "Generated"), res.Code)
}

func TestBuildSnippet_GenerativePath(t *testing.T) {
	gen := &fakeGenerative{enabled: true, result: aimerge.Result{Code: "from service"}}
	f := newFixture(t, gen)
	res, err := f.pipeline.BuildSnippet(context.Background(), "profile card")
	require.NoError(t, err)
	require.Equal(t, SourceGenerative, res.Source)
	require.Equal(t, "from service", res.Code)
	require.Equal(t, 1, gen.calls)
	require.Zero(t, f.direct.calls)

	gen = &fakeGenerative{enabled: true, result: aimerge.Result{Code: "fallback", Fallback: true, Err: aimerge.ErrServiceFailure}}
	f = newFixture(t, gen)
	res, err = f.pipeline.BuildSnippet(context.Background(), "profile card")
	require.NoError(t, err)
	require.Equal(t, SourceFallback, res.Source)
	require.Equal(t, "fallback", res.Code)
}

// missingRetriever names a component the catalog does not have.
type missingRetriever struct{}

func (missingRetriever) TopComponents(string, int) []string { return []string{"Button", "Ghost"} }

func TestBuildSnippet_CatalogLookupFailureIsFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.pipeline.opts.Retriever = missingRetriever{}

	_, err := f.pipeline.BuildSnippet(context.Background(), "haunted")
	require.ErrorIs(t, err, catalog.ErrComponentNotFound)

	_, ok := f.store.Lookup(context.Background(), "haunted")
	require.False(t, ok)
}

func TestBuildSnippet_CacheWriteFailureStillReturnsCode(t *testing.T) {
	f := newFixture(t, nil)
	f.pipeline.opts.Cache = failingStore{Store: f.store}

	res, err := f.pipeline.BuildSnippet(context.Background(), "data table")
	require.NoError(t, err)
	require.NotEmpty(t, res.Code)
	require.Equal(t, SourceDirect, res.Source)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestExportName(t *testing.T) {
	for in, want := range map[string]string{
		"login form":        "LoginForm",
		"LOGIN form":        "LoginForm",
		"user-profile card": "UserProfileCard",
		"  data_table  ":    "DataTable",
		"!!!":               "Generated",
		"":                  "Generated",
	} {
		require.Equal(t, want, ExportName(in), in)
	}
}
