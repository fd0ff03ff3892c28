package index

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/novagen/internal/catalog"
)

// keywordProvider embeds text as counts of a fixed vocabulary, so related
// texts land close together.
type keywordProvider struct {
	model string
	calls int
	fail  bool
}

var vocab = []string{"button", "form", "field", "avatar", "table", "click"}

func (p *keywordProvider) ModelID() string {
	if p.model == "" {
		return "fake:keywords"
	}
	return p.model
}

func (p *keywordProvider) Dim() int { return len(vocab) }

func (p *keywordProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("boom")
	}
	lower := strings.ToLower(text)
	v := make([]float32, len(vocab))
	for i, w := range vocab {
		v[i] = float32(strings.Count(lower, w))
	}
	return v, nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	code := []catalog.Variant{{Code: "export const X = () => <X />;"}}
	c, err := catalog.New([]catalog.Entry{
		{Name: "Button", Description: "A button you click", Tags: []string{"click"}, Variants: code},
		{Name: "Input", Description: "A form field", Category: "forms", Tags: []string{"form"}, Variants: code},
		{Name: "Avatar", Description: "An avatar image", Variants: code},
	})
	require.NoError(t, err)
	return c
}

func TestBuild_WritesLoadableIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	cat := testCatalog(t)
	prov := &keywordProvider{}

	built, err := Build(context.Background(), prov, cat, BuildOptions{OutDir: dir, Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, 3, prov.calls)
	assert.Equal(t, len(vocab), built.Manifest.Dim)
	assert.False(t, Stale(built, cat))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, built.Manifest, loaded.Manifest)
	assert.Equal(t, []string{"Button", "Input", "Avatar"}, names(loaded.Entries))
	assert.Equal(t, built.Vectors, loaded.Vectors)
}

func TestBuild_Incremental(t *testing.T) {
	dir := t.TempDir()
	cat := testCatalog(t)

	_, err := Build(context.Background(), &keywordProvider{}, cat, BuildOptions{OutDir: dir})
	require.NoError(t, err)

	again := &keywordProvider{}
	_, err = Build(context.Background(), again, cat, BuildOptions{OutDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, again.calls, "unchanged entries reuse stored vectors")

	forced := &keywordProvider{}
	_, err = Build(context.Background(), forced, cat, BuildOptions{OutDir: dir, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 3, forced.calls)

	other := &keywordProvider{model: "fake:other"}
	_, err = Build(context.Background(), other, cat, BuildOptions{OutDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, other.calls, "a different model re-embeds everything")
}

func TestBuild_Errors(t *testing.T) {
	cat := testCatalog(t)

	_, err := Build(context.Background(), &keywordProvider{}, cat, BuildOptions{})
	assert.Error(t, err)

	_, err = Build(context.Background(), &keywordProvider{fail: true}, cat, BuildOptions{OutDir: t.TempDir()})
	assert.ErrorContains(t, err, "cannot embed Button")
}

func TestSuggest(t *testing.T) {
	cat := testCatalog(t)
	prov := &keywordProvider{}
	idx, err := Build(context.Background(), prov, cat, BuildOptions{OutDir: t.TempDir(), Normalize: true})
	require.NoError(t, err)

	got, err := idx.Suggest(context.Background(), prov, "a form with a field", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Input", got[0].Name)
	assert.Equal(t, "forms", got[0].Category)
	assert.Greater(t, got[0].Score, got[1].Score)

	empty, err := idx.Suggest(context.Background(), prov, "   ", 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = idx.Suggest(context.Background(), &keywordProvider{model: "fake:other"}, "form", 2)
	assert.ErrorIs(t, err, ErrModelMismatch)
}

func TestCosine(t *testing.T) {
	s, err := Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, s, 1e-9)

	s, err = Cosine([]float32{2, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1, s, 1e-9)

	s, err = Cosine([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = Cosine([]float32{1}, []float32{1, 0})
	assert.ErrorIs(t, err, ErrVectorLengthMismatch)
}

func TestStale(t *testing.T) {
	cat := testCatalog(t)
	idx, err := Build(context.Background(), &keywordProvider{}, cat, BuildOptions{OutDir: t.TempDir()})
	require.NoError(t, err)

	other, err := catalog.New(cat.Entries()[:2])
	require.NoError(t, err)
	assert.True(t, Stale(idx, other))
}

func names(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Name
	}
	return out
}
