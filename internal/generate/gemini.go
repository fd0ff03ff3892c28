package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiGenerator struct {
	client *genai.Client
	opts   options
}

func newGemini(ctx context.Context, o options) (*geminiGenerator, error) {
	cfg := &genai.ClientConfig{
		APIKey:  o.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &geminiGenerator{client: client, opts: o}, nil
}

func (g *geminiGenerator) Provider() string { return "gemini" }

// Generate calls GenerateContent; the reply is the first candidate's parts.
func (g *geminiGenerator) Generate(ctx context.Context, req Request) (Completion, error) {
	ctx, cancel := withTimeout(ctx, g.opts.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelOr(req.Model, "gemini"), genai.Text(req.Prompt), cfg)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Completion{}, fmt.Errorf("gemini returned no candidates")
	}
	var parts []Part
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		parts = append(parts, Part{Kind: "text", Text: p.Text})
	}
	return FromParts(parts...), nil
}
