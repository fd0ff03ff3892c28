// Package generate is the boundary to external text-generation services.
// Each provider turns a Request into a Completion with a single call; there
// are no retries.
package generate

import (
	"context"
	"strings"
	"time"

	"go.trai.ch/zerr"

	"github.com/kamusis/novagen/internal/config"
)

var (
	// ErrNoCredential means no API key is configured for the provider.
	ErrNoCredential = zerr.New("no generative service credential")
	// ErrUnknownProvider means the configured provider is not supported.
	ErrUnknownProvider = zerr.New("unknown generative provider")
)

// Default models per provider, used when none is configured.
var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-latest",
	"gemini":    "gemini-2.0-flash",
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[strings.ToLower(provider)]
}

// Request is one single-turn generation.
type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int64
}

// Generator produces a completion for a request.
type Generator interface {
	Provider() string
	Generate(ctx context.Context, req Request) (Completion, error)
}

// Part is one content part of a PartsReply.
type Part struct {
	Kind string
	Text string
}

// MessageReply is a reply carrying its text as top-level message content.
type MessageReply struct {
	Content string
}

// PartsReply is a reply carrying an indexable list of content parts.
type PartsReply struct {
	Parts []Part
}

// Completion holds exactly one of the two reply shapes.
type Completion struct {
	message *MessageReply
	parts   *PartsReply
}

// FromMessage wraps a message-shaped reply.
func FromMessage(content string) Completion {
	return Completion{message: &MessageReply{Content: content}}
}

// FromParts wraps a parts-shaped reply.
func FromParts(parts ...Part) Completion {
	return Completion{parts: &PartsReply{Parts: parts}}
}

// Message returns the message shape, if present.
func (c Completion) Message() (MessageReply, bool) {
	if c.message == nil {
		return MessageReply{}, false
	}
	return *c.message, true
}

// Parts returns the parts shape, if present.
func (c Completion) Parts() (PartsReply, bool) {
	if c.parts == nil {
		return PartsReply{}, false
	}
	return *c.parts, true
}

// Text returns the reply text. For a parts reply the text parts are
// concatenated in order.
func (c Completion) Text() string {
	if m, ok := c.Message(); ok {
		return m.Content
	}
	if p, ok := c.Parts(); ok {
		var b strings.Builder
		for _, part := range p.Parts {
			if part.Kind == "" || part.Kind == "text" {
				b.WriteString(part.Text)
			}
		}
		return b.String()
	}
	return ""
}

// New returns the generator for s.Provider. The returned generator bounds
// each call by s.Timeout.
func New(ctx context.Context, s config.AISettings) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = "openai"
	}
	if _, ok := defaultModels[provider]; !ok {
		return nil, zerr.With(zerr.Wrap(ErrUnknownProvider, "select generator"), "provider", s.Provider)
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, zerr.With(zerr.Wrap(ErrNoCredential, "select generator"), "provider", provider)
	}

	opts := options{
		apiKey:  strings.TrimSpace(s.APIKey),
		baseURL: strings.TrimSpace(s.BaseURL),
		timeout: s.Timeout,
	}
	switch provider {
	case "anthropic":
		return newAnthropic(opts), nil
	case "gemini":
		return newGemini(ctx, opts)
	default:
		return newOpenAI(opts), nil
	}
}

type options struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func modelOr(model, provider string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return defaultModels[provider]
}
