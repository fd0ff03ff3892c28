package generate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIGenerator struct {
	client openai.Client
	opts   options
}

func newOpenAI(o options) *openAIGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	return &openAIGenerator{client: openai.NewClient(opts...), opts: o}
}

func (g *openAIGenerator) Provider() string { return "openai" }

// Generate calls the Chat Completions API; the reply is message-shaped.
func (g *openAIGenerator) Generate(ctx context.Context, req Request) (Completion, error) {
	ctx, cancel := withTimeout(ctx, g.opts.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelOr(req.Model, "openai")),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("openai chat completion returned no choices")
	}
	return FromMessage(resp.Choices[0].Message.Content), nil
}
