package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FILERAG_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: FILERAG_DATA_DIR -> data_dir, etc.
	if err := k.Load(env.Provider("FILERAG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FILERAG_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validInjectionTypes is the set of recognized injection_type values.
var validInjectionTypes = map[InjectionType]bool{
	InjectionSystem: true,
	InjectionPrompt: true,
}

// validProviderTypes is the set of recognized provider type values.
var validProviderTypes = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
	ProviderCohere: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size)")
	}

	if c.RetrieveTopK <= 0 {
		return fmt.Errorf("retrieve_top_k must be positive")
	}
	if c.FetchK < c.RetrieveTopK {
		return fmt.Errorf("fetch_k (%d) must be >= retrieve_top_k (%d)", c.FetchK, c.RetrieveTopK)
	}

	if c.FileRetentionTime < 0 {
		return fmt.Errorf("file_retention_time must be non-negative")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	if c.FileMaxRounds <= 0 {
		return fmt.Errorf("file_max_rounds must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive")
	}

	if !validInjectionTypes[c.InjectionType] {
		return fmt.Errorf("invalid injection_type %q: must be one of system, prompt", c.InjectionType)
	}
	if c.SystemContextKeepRounds < 0 {
		return fmt.Errorf("system_context_keep_rounds must be non-negative")
	}

	if len(c.EmbeddingProviders) == 0 {
		return fmt.Errorf("at least one embedding provider is required")
	}
	for i, p := range c.EmbeddingProviders {
		if !validProviderTypes[p.Type] {
			return fmt.Errorf("embedding_providers[%d]: invalid type %q", i, p.Type)
		}
		if p.Type == ProviderCohere {
			return fmt.Errorf("embedding_providers[%d]: cohere is rerank-only", i)
		}
	}
	for i, p := range c.RerankProviders {
		if !validProviderTypes[p.Type] {
			return fmt.Errorf("rerank_providers[%d]: invalid type %q", i, p.Type)
		}
	}

	return nil
}
