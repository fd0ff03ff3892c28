package generate

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens applies when the request sets no budget; the Messages
// API requires one.
const anthropicMaxTokens = 2500

type anthropicGenerator struct {
	client anthropic.Client
	opts   options
}

func newAnthropic(o options) *anthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	return &anthropicGenerator{client: anthropic.NewClient(opts...), opts: o}
}

func (g *anthropicGenerator) Provider() string { return "anthropic" }

// Generate calls the Messages API; the reply is parts-shaped.
func (g *anthropicGenerator) Generate(ctx context.Context, req Request) (Completion, error) {
	ctx, cancel := withTimeout(ctx, g.opts.timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelOr(req.Model, "anthropic")),
		MaxTokens:   maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("anthropic messages call failed: %w", err)
	}
	parts := make([]Part, 0, len(msg.Content))
	for _, block := range msg.Content {
		parts = append(parts, Part{Kind: string(block.Type), Text: block.Text})
	}
	return FromParts(parts...), nil
}
