package embeddings

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamusis/novagen/internal/config"
)

// Provider embeds text into a fixed-length float vector.
//
// Implementations must be deterministic for the same input text and model.
type Provider interface {
	ModelID() string
	Dim() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// providerKeyEnv is the conventional credential variable per provider.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// LoadConfig resolves embeddings config from environment variables first, then
// ~/.novagen/.env, then the embeddings section of cfg.
func LoadConfig(cfg *config.Config) (*Config, error) {
	get := func(key string) (string, error) {
		v, err := config.GetConfigValue(key)
		return strings.TrimSpace(v), err
	}

	provider, err := get("NOVAGEN_EMBEDDINGS_PROVIDER")
	if err != nil {
		return nil, err
	}
	model, err := get("NOVAGEN_EMBEDDINGS_MODEL")
	if err != nil {
		return nil, err
	}
	apiKey, err := get("NOVAGEN_EMBEDDINGS_API_KEY")
	if err != nil {
		return nil, err
	}
	baseURL, err := get("NOVAGEN_EMBEDDINGS_BASE_URL")
	if err != nil {
		return nil, err
	}

	if cfg != nil {
		if provider == "" {
			provider = cfg.Embeddings.Provider
		}
		if model == "" {
			model = cfg.Embeddings.Model
		}
	}
	provider = strings.ToLower(provider)
	if apiKey == "" {
		if name, ok := providerKeyEnv[provider]; ok {
			if apiKey, err = get(name); err != nil {
				return nil, err
			}
		}
	}

	return &Config{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	}, nil
}

// NewFromConfig returns an embeddings provider.
func NewFromConfig(ctx context.Context, cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("embeddings provider is not configured (set NOVAGEN_EMBEDDINGS_PROVIDER)")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embeddings API key is not configured (set NOVAGEN_EMBEDDINGS_API_KEY)")
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg), nil
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
