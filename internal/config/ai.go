package config

import (
	"strings"
	"time"
)

// AISettings is the resolved generative-merge configuration: switches and
// secrets from the environment layered over the YAML config.
type AISettings struct {
	Enabled     bool
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

// Usable reports whether a generative merge should be attempted at all.
func (s AISettings) Usable() bool {
	return s.Enabled && s.APIKey != ""
}

// providerKeyEnv maps a provider to its conventional credential variable.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// ResolveAI resolves AISettings from environment variables first, then ~/.novagen/.env,
// then cfg.
//
// USE_AI_MERGING defaults to "true"; any other value disables generative merging.
func ResolveAI(cfg *Config) (AISettings, error) {
	get := func(key string) (string, error) {
		v, err := GetConfigValue(key)
		return strings.TrimSpace(v), err
	}

	useAI, err := get("USE_AI_MERGING")
	if err != nil {
		return AISettings{}, err
	}
	if useAI == "" {
		useAI = "true"
	}

	provider, err := get("NOVAGEN_AI_PROVIDER")
	if err != nil {
		return AISettings{}, err
	}
	if provider == "" {
		provider = cfg.Generative.Provider
	}
	provider = strings.ToLower(provider)
	if provider == "" {
		provider = "openai"
	}

	apiKey, err := get("NOVAGEN_AI_API_KEY")
	if err != nil {
		return AISettings{}, err
	}
	if apiKey == "" {
		if name, ok := providerKeyEnv[provider]; ok {
			if apiKey, err = get(name); err != nil {
				return AISettings{}, err
			}
		}
	}

	model, err := get("NOVAGEN_AI_MODEL")
	if err != nil {
		return AISettings{}, err
	}
	if model == "" {
		model = cfg.Generative.Model
	}

	baseURL, err := get("NOVAGEN_AI_BASE_URL")
	if err != nil {
		return AISettings{}, err
	}
	if baseURL == "" {
		baseURL = cfg.Generative.BaseURL
	}

	timeout, err := cfg.GenerativeTimeout()
	if err != nil {
		return AISettings{}, err
	}

	return AISettings{
		Enabled:     strings.EqualFold(useAI, "true"),
		Provider:    provider,
		Model:       model,
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Temperature: cfg.Generative.Temperature,
		MaxTokens:   cfg.Generative.MaxTokens,
		Timeout:     timeout,
	}, nil
}
