// Package rerank provides the optional second-pass relevance reordering
// applied to the fetch-k candidate pool before the top-k cut.
package rerank

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/zz6zz666/filerag/internal/config"
)

// Result is one reranked candidate: its index into the input slice and the
// relevance score assigned by the model.
type Result struct {
	Index int
	Score float64
}

// Reranker reorders candidate passages by relevance to a query.
type Reranker interface {
	// Rerank scores the documents against the query and returns them in
	// descending relevance order.
	Rerank(ctx context.Context, query string, documents []string) ([]Result, error)

	// Name returns the name/identifier of the rerank model.
	Name() string
}

// Resolve picks a reranker from the declared providers: a configured ID
// wins, otherwise the first constructible provider. Returns nil when no
// provider is available; reranking is optional and retrieval proceeds on
// vector order alone.
func Resolve(configs []config.RerankProviderConfig, preferID string) Reranker {
	if preferID != "" {
		for _, pc := range configs {
			if pc.ID == preferID {
				r, err := build(pc)
				if err != nil {
					log.Printf("rerank: configured provider %q unavailable: %v", preferID, err)
					return nil
				}
				return r
			}
		}
		log.Printf("rerank: configured provider %q not declared", preferID)
	}

	for _, pc := range configs {
		r, err := build(pc)
		if err != nil {
			log.Printf("rerank: provider %q unavailable: %v", pc.ID, err)
			continue
		}
		return r
	}
	return nil
}

func build(pc config.RerankProviderConfig) (Reranker, error) {
	switch pc.Type {
	case config.ProviderCohere:
		key := os.Getenv(pc.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("api key env %s is empty", pc.APIKeyEnv)
		}
		return NewCohereReranker(key, pc.Model, pc.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown rerank provider type %q", pc.Type)
	}
}
