package embeddings

import "context"

// Embedder defines the capability of turning text into vectors. Provider
// availability may fluctuate at runtime; callers re-resolve through the
// Resolver when an embedder stops working.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
