package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generative configures the text-generation service used to merge snippets.
type Generative struct {
	Provider string `yaml:"provider"`
	// Model is the provider's model id; empty selects the provider default.
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
}

// Embeddings configures the provider used by semantic suggestions.
type Embeddings struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// Config is the in-memory representation of ~/.novagen/novagen.yaml.
type Config struct {
	CatalogPath        string     `yaml:"catalog_path,omitempty"`
	CachePath          string     `yaml:"cache_path"`
	CacheBackend       string     `yaml:"cache_backend"`
	IndexPath          string     `yaml:"index_path,omitempty"`
	DesignSystemModule string     `yaml:"design_system_module"`
	TopK               int        `yaml:"top_k"`
	MergeStrategy      string     `yaml:"merge_strategy"`
	FallbackStrategy   string     `yaml:"fallback_strategy"`
	CommonComponents   []string   `yaml:"common_components,omitempty"`
	TemplatePath       string     `yaml:"template_path,omitempty"`
	Generative         Generative `yaml:"generative"`
	Embeddings         Embeddings `yaml:"embeddings,omitempty"`
	LogLevel           string     `yaml:"log_level,omitempty"`
	LogJSON            bool       `yaml:"log_json,omitempty"`
}

// HomeDir returns the absolute path to ~/.novagen/.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".novagen"), nil
}

// ConfigPath returns the absolute path to ~/.novagen/novagen.yaml.
func ConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "novagen.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config used when no config file exists.
func DefaultConfig() (*Config, error) {
	dir, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CachePath:          filepath.Join(dir, "pattern-dataset.csv"),
		CacheBackend:       "csv",
		IndexPath:          filepath.Join(dir, "index"),
		DesignSystemModule: "@visa/nova-react",
		TopK:               3,
		MergeStrategy:      "template",
		FallbackStrategy:   "layout",
		CommonComponents:   []string{"Button", "Input", "Card", "Badge", "Avatar"},
		Generative: Generative{
			Provider:    "openai",
			Temperature: 0.1,
			MaxTokens:   2500,
			Timeout:     "60s",
		},
		Embeddings: Embeddings{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		LogLevel: "info",
	}, nil
}

// Load reads ~/.novagen/novagen.yaml, falling back to DefaultConfig when the file is absent.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	for _, p := range []*string{&cfg.CatalogPath, &cfg.CachePath, &cfg.IndexPath, &cfg.TemplatePath} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("unknown cache_backend %q (expected csv or sqlite)", c.CacheBackend)
	}
	for _, s := range []string{c.MergeStrategy, c.FallbackStrategy} {
		if s != "template" && s != "layout" {
			return fmt.Errorf("unknown merge strategy %q (expected template or layout)", s)
		}
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if _, err := c.GenerativeTimeout(); err != nil {
		return err
	}
	return nil
}

// GenerativeTimeout parses generative.timeout; empty means 60s.
func (c *Config) GenerativeTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Generative.Timeout) == "" {
		return 60 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Generative.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generative.timeout %q: %w", c.Generative.Timeout, err)
	}
	return d, nil
}

// Save marshals cfg and writes it to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
