package embeddings

import (
	"errors"
	"testing"

	"github.com/zz6zz666/filerag/internal/config"
)

func TestResolvePrefersConfiguredID(t *testing.T) {
	t.Setenv("FILERAG_TEST_KEY", "sk-test")

	r := NewResolver([]config.EmbeddingProviderConfig{
		{ID: "local", Type: config.ProviderOllama, Model: "nomic-embed-text", Dimensions: 768},
		{ID: "remote", Type: config.ProviderOpenAI, Model: "text-embedding-3-small", APIKeyEnv: "FILERAG_TEST_KEY"},
	}, "remote")

	e, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if e.Name() != "text-embedding-3-small" {
		t.Errorf("resolved %q, want the configured openai provider", e.Name())
	}
}

func TestResolveFallsBackToFirstCapable(t *testing.T) {
	t.Setenv("FILERAG_EMPTY_KEY", "")

	r := NewResolver([]config.EmbeddingProviderConfig{
		{ID: "remote", Type: config.ProviderOpenAI, Model: "text-embedding-3-small", APIKeyEnv: "FILERAG_EMPTY_KEY"},
		{ID: "local", Type: config.ProviderOllama, Model: "nomic-embed-text", Dimensions: 768},
	}, "")

	e, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("resolved %q, want the ollama fallback", e.Name())
	}
}

func TestResolveUnavailable(t *testing.T) {
	t.Setenv("FILERAG_EMPTY_KEY", "")

	r := NewResolver([]config.EmbeddingProviderConfig{
		{ID: "remote", Type: config.ProviderOpenAI, Model: "text-embedding-3-small", APIKeyEnv: "FILERAG_EMPTY_KEY"},
	}, "")

	if _, err := r.Resolve(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Resolve() error = %v, want ErrUnavailable", err)
	}
}

func TestOpenAIDimensionsTable(t *testing.T) {
	e := NewOpenAIEmbedder("sk-test", "text-embedding-3-large", "", 0)
	if e.Dimensions() != 3072 {
		t.Errorf("Dimensions() = %d, want 3072", e.Dimensions())
	}

	override := NewOpenAIEmbedder("sk-test", "text-embedding-3-large", "", 256)
	if override.Dimensions() != 256 {
		t.Errorf("override Dimensions() = %d, want 256", override.Dimensions())
	}

	unknown := NewOpenAIEmbedder("sk-test", "some-new-model", "", 0)
	if unknown.Dimensions() != 1536 {
		t.Errorf("unknown model Dimensions() = %d, want 1536", unknown.Dimensions())
	}
}
