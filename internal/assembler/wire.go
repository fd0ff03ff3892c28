package assembler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kamusis/novagen/internal/aimerge"
	"github.com/kamusis/novagen/internal/cache"
	"github.com/kamusis/novagen/internal/catalog"
	"github.com/kamusis/novagen/internal/config"
	"github.com/kamusis/novagen/internal/generate"
	"github.com/kamusis/novagen/internal/merge"
	"github.com/kamusis/novagen/internal/search"
)

// Components is everything built from a config, shared by the CLI commands.
type Components struct {
	Config     *config.Config
	Catalog    *catalog.Catalog
	Retriever  *search.Retriever
	Cache      cache.Store
	Merger     *merge.Merger
	Generative *aimerge.Merger
	AI         config.AISettings
	Pipeline   *Pipeline
}

// Close releases the cache.
func (c *Components) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// FromConfig builds the catalog, retriever, cache, mergers and pipeline
// described by cfg. A generative provider that cannot be constructed is
// logged and leaves only the deterministic path enabled.
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	direct, err := merge.ParseStrategy(cfg.MergeStrategy)
	if err != nil {
		return nil, err
	}
	fallback, err := merge.ParseStrategy(cfg.FallbackStrategy)
	if err != nil {
		return nil, err
	}
	merger, err := merge.New(cfg.DesignSystemModule, cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	ai, err := config.ResolveAI(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve generative settings: %w", err)
	}

	var gen generate.Generator
	if ai.Usable() {
		if gen, err = generate.New(ctx, ai); err != nil {
			logger.Warn("generative merging unavailable", zap.Error(err))
			gen = nil
		}
	}
	generative := aimerge.New(gen, merger, fallback, ai, logger.Named("aimerge"))

	store, err := cache.Open(cfg.CacheBackend, cfg.CachePath, logger.Named("cache"))
	if err != nil {
		return nil, err
	}
	retriever := search.NewRetriever(cat, cfg.CommonComponents)

	p, err := New(Options{
		Catalog:    cat,
		Retriever:  retriever,
		Cache:      store,
		Direct:     merger,
		Strategy:   direct,
		Generative: generative,
		TopK:       cfg.TopK,
		Logger:     logger.Named("assembler"),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Components{
		Config:     cfg,
		Catalog:    cat,
		Retriever:  retriever,
		Cache:      store,
		Merger:     merger,
		Generative: generative,
		AI:         ai,
		Pipeline:   p,
	}, nil
}

// AIStatus summarises the generative setup for health reporting.
type AIStatus struct {
	Enabled  bool   `json:"enabled"`
	HasKey   bool   `json:"has_key"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Ready    bool   `json:"ready"`
}

// AISetup reports whether generative merging would be attempted.
func AISetup(s config.AISettings) AIStatus {
	model := s.Model
	if model == "" {
		model = generate.DefaultModel(s.Provider)
	}
	return AIStatus{
		Enabled:  s.Enabled,
		HasKey:   s.APIKey != "",
		Provider: s.Provider,
		Model:    model,
		Ready:    s.Usable(),
	}
}
