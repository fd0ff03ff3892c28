// Package aimerge merges component snippets through a text-generation service
// and falls back to a deterministic merge strategy whenever the service is
// unavailable or its output does not validate.
package aimerge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
	"go.uber.org/zap"

	"github.com/kamusis/novagen/internal/config"
	"github.com/kamusis/novagen/internal/generate"
	"github.com/kamusis/novagen/internal/merge"
)

var (
	// ErrDisabled means generative merging is switched off or has no credential.
	ErrDisabled = zerr.New("generative merging disabled")
	// ErrServiceFailure means the service call failed or returned nothing.
	ErrServiceFailure = zerr.New("generative service failure")
	// ErrValidationFailure means the returned code did not pass validation.
	ErrValidationFailure = zerr.New("generated code failed validation")
)

// Result is the outcome of a merge. Err is the reason the service output was
// not used; Fallback reports that Code came from the deterministic strategy.
type Result struct {
	Code     string
	Err      error
	Fallback bool
}

// Merger runs generative merges.
type Merger struct {
	gen      generate.Generator
	fallback *merge.Merger
	strategy merge.Strategy
	settings config.AISettings
	module   string
	logger   *zap.Logger
}

// New returns a Merger. gen may be nil, which disables the service path.
// Fallback merges use strategy on fallback.
func New(gen generate.Generator, fallback *merge.Merger, strategy merge.Strategy, s config.AISettings, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{
		gen:      gen,
		fallback: fallback,
		strategy: strategy,
		settings: s,
		module:   fallback.Module(),
		logger:   logger,
	}
}

// Enabled reports whether TryMerge will call the service.
func (m *Merger) Enabled() bool {
	return m.gen != nil && m.settings.Usable()
}

// TryMerge asks the service for a merged component. It never falls back;
// on failure Code is empty and Err is classified as ErrDisabled,
// ErrServiceFailure or ErrValidationFailure.
func (m *Merger) TryMerge(ctx context.Context, snippets []string, query, exportName string) Result {
	if !m.Enabled() {
		return Result{Err: zerr.Wrap(ErrDisabled, "generative merge")}
	}
	if len(snippets) == 0 {
		return Result{Err: zerr.Wrap(ErrServiceFailure, "no snippets to merge")}
	}

	c, err := m.gen.Generate(ctx, generate.Request{
		System:      Persona,
		Prompt:      BuildPrompt(snippets, query, exportName),
		Model:       m.settings.Model,
		Temperature: m.settings.Temperature,
		MaxTokens:   m.settings.MaxTokens,
	})
	if err != nil {
		return Result{Err: zerr.With(fmt.Errorf("%w: %w", ErrServiceFailure, err), "provider", m.gen.Provider())}
	}
	raw := c.Text()
	if strings.TrimSpace(raw) == "" {
		return Result{Err: zerr.With(zerr.Wrap(ErrServiceFailure, "empty response"), "provider", m.gen.Provider())}
	}

	code := ExtractCode(raw)
	if err := Validate(code, m.module); err != nil {
		return Result{Err: err}
	}
	return Result{Code: code}
}

// Merge returns the service's merged component, or the fallback strategy's
// output for the same snippets when TryMerge fails. It always yields code.
func (m *Merger) Merge(ctx context.Context, snippets []string, query, exportName string) Result {
	if strings.TrimSpace(exportName) == "" {
		exportName = merge.DefaultExportName
	}
	r := m.TryMerge(ctx, snippets, query, exportName)
	if r.Err == nil {
		m.logger.Info("generative merge succeeded",
			zap.String("provider", m.gen.Provider()),
			zap.Int("snippets", len(snippets)))
		return r
	}

	level := zap.WarnLevel
	if errors.Is(r.Err, ErrDisabled) {
		level = zap.DebugLevel
	}
	m.logger.Log(level, "falling back to deterministic merge",
		zap.String("strategy", string(m.strategy)),
		zap.Error(r.Err))

	r.Code = m.fallback.Merge(m.strategy, snippets, exportName)
	r.Fallback = true
	return r
}
