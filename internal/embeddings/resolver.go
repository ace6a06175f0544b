package embeddings

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/zz6zz666/filerag/internal/config"
)

// ErrUnavailable is returned when no declared embedding provider can be
// constructed. Callers retry resolution a bounded number of times and then
// report a generic failure to the user.
var ErrUnavailable = errors.New("no embedding provider available")

// Resolver turns declared provider configs into a live Embedder. Selection
// is explicit: a configured provider ID wins; otherwise the first declared
// provider that can be constructed is used.
type Resolver struct {
	preferID string
	configs  []config.EmbeddingProviderConfig
}

// NewResolver creates a resolver over the declared providers.
func NewResolver(configs []config.EmbeddingProviderConfig, preferID string) *Resolver {
	return &Resolver{preferID: preferID, configs: configs}
}

// Resolve picks and constructs an embedder. Each call re-reads credentials
// from the environment, so a provider that was missing its key earlier can
// become available without a restart.
func (r *Resolver) Resolve() (Embedder, error) {
	if r.preferID != "" {
		for _, pc := range r.configs {
			if pc.ID == r.preferID {
				return build(pc)
			}
		}
		log.Printf("embeddings: configured provider %q not declared, falling back to first capable", r.preferID)
	}

	for _, pc := range r.configs {
		e, err := build(pc)
		if err != nil {
			log.Printf("embeddings: provider %q unavailable: %v", pc.ID, err)
			continue
		}
		return e, nil
	}

	return nil, ErrUnavailable
}

func build(pc config.EmbeddingProviderConfig) (Embedder, error) {
	switch pc.Type {
	case config.ProviderOpenAI:
		key := os.Getenv(pc.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("api key env %s is empty", pc.APIKeyEnv)
		}
		return NewOpenAIEmbedder(key, pc.Model, pc.BaseURL, pc.Dimensions), nil
	case config.ProviderOllama:
		return NewOllamaEmbedder(pc.Model, pc.Dimensions, pc.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider type %q", pc.Type)
	}
}
