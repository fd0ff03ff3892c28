// Package assembler turns a free-text query into one merged component:
// cache lookup, retrieval, merge and cache write.
package assembler

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kamusis/novagen/internal/aimerge"
	"github.com/kamusis/novagen/internal/cache"
	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/merge"
)

// DefaultTopK is the number of components merged per query.
const DefaultTopK = 3

// Source names the path that produced a result.
type Source string

const (
	SourceCache      Source = "cache"
	SourceGenerative Source = "generative"
	SourceFallback   Source = "fallback"
	SourceDirect     Source = "direct"
)

// Retriever picks component names for a query.
type Retriever interface {
	TopComponents(query string, k int) []string
}

// DirectMerger merges snippets deterministically.
type DirectMerger interface {
	Merge(strategy merge.Strategy, snippets []string, exportName string) string
}

// GenerativeMerger merges snippets through a generation service, falling
// back on its own.
type GenerativeMerger interface {
	Enabled() bool
	Merge(ctx context.Context, snippets []string, query, exportName string) aimerge.Result
}

// Options wires a Pipeline. Generative may be nil.
type Options struct {
	Catalog    *catalog.Catalog
	Retriever  Retriever
	Cache      cache.Store
	Direct     DirectMerger
	Strategy   merge.Strategy
	Generative GenerativeMerger
	TopK       int
	Logger     *zap.Logger
}

// Pipeline builds snippets for queries.
type Pipeline struct {
	opts Options
}

// Result is a built snippet.
type Result struct {
	Code       string
	Components []string
	Source     Source
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Catalog == nil:
		return nil, errors.New("assembler: catalog is required")
	case opts.Retriever == nil:
		return nil, errors.New("assembler: retriever is required")
	case opts.Cache == nil:
		return nil, errors.New("assembler: cache is required")
	case opts.Direct == nil:
		return nil, errors.New("assembler: direct merger is required")
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Strategy == "" {
		opts.Strategy = merge.StrategyTemplate
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{opts: opts}, nil
}

// BuildSnippet returns the merged component for query. A cached record for
// the normalized query is returned without retrieval or merging. The only
// error is a retrieved component missing from the catalog.
func (p *Pipeline) BuildSnippet(ctx context.Context, query string) (Result, error) {
	key := cache.NormalizeQuery(query)
	log := p.opts.Logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("query", key),
	)

	if rec, ok := p.opts.Cache.Lookup(ctx, key); ok {
		log.Debug("cache hit", zap.Strings("components", rec.Components))
		return Result{Code: rec.Code, Components: rec.Components, Source: SourceCache}, nil
	}

	comps := p.opts.Retriever.TopComponents(query, p.opts.TopK)
	snippets, err := p.opts.Catalog.Snippets(comps)
	if err != nil {
		return Result{}, zerr.With(zerr.Wrap(err, "build snippet"), "query", key)
	}
	exportName := ExportName(query)
	log.Info("components selected",
		zap.Strings("components", comps),
		zap.String("export", exportName))

	var res Result
	if p.opts.Generative != nil && p.opts.Generative.Enabled() {
		r := p.opts.Generative.Merge(ctx, snippets, query, exportName)
		res = Result{Code: r.Code, Components: comps, Source: SourceGenerative}
		if r.Fallback {
			res.Source = SourceFallback
		}
	} else {
		code := p.opts.Direct.Merge(p.opts.Strategy, snippets, exportName)
		res = Result{Code: code, Components: comps, Source: SourceDirect}
	}
	log.Info("snippet merged", zap.String("source", string(res.Source)))

	if err := p.opts.Cache.Append(ctx, cache.Record{Query: key, Components: comps, Code: res.Code}); err != nil {
		log.Error("cache write failed", zap.Error(err))
	}
	return res, nil
}

var nonAlnumRE = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportName derives a component identifier from query: non-alphanumerics
// become word breaks, each word is title-cased and the words are joined.
// A query with no alphanumerics yields merge.DefaultExportName.
func ExportName(query string) string {
	spaced := nonAlnumRE.ReplaceAllString(query, " ")
	title := cases.Title(language.Und).String(spaced)
	name := strings.ReplaceAll(title, " ", "")
	if name == "" {
		return merge.DefaultExportName
	}
	return name
}
