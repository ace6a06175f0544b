// Package vecstore wraps one persistent chromem-go database per slot: the
// index handle owns the slot's on-disk directory and exposes batch insert
// and fetch-k/top-k retrieval with optional reranking.
package vecstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/rerank"
)

// ErrClosed is returned by writes against a handle that has been closed.
var ErrClosed = errors.New("index handle closed")

const collectionName = "chunks"

// Metadata keys attached to every stored chunk.
const (
	MetaFileName   = "file_name"
	MetaChunkIndex = "chunk_index"
)

// Result is one retrieved chunk in ranked order.
type Result struct {
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Handle is a live vector index bound to one slot directory. The registry
// is the sole owner, but a reader may still hold a handle the reaper is
// tearing down: after Close, reads return empty results and writes return
// ErrClosed.
type Handle struct {
	dir      string
	reranker rerank.Reranker

	mu         sync.Mutex
	db         *chromem.DB
	collection *chromem.Collection
}

// Open creates or reopens the index rooted at dir. The embedder is
// required; the reranker may be nil, in which case retrieval keeps plain
// vector order.
func Open(dir string, embedder embeddings.Embedder, reranker rerank.Reranker) (*Handle, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening index at %s: %w", dir, err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return &Handle{dir: dir, db: db, collection: col, reranker: reranker}, nil
}

// Dir returns the directory the handle occupies.
func (h *Handle) Dir() string {
	return h.dir
}

// col snapshots the collection pointer; nil after Close.
func (h *Handle) col() *chromem.Collection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collection
}

// Count returns the number of stored chunks, 0 once closed.
func (h *Handle) Count() int {
	col := h.col()
	if col == nil {
		return 0
	}
	return col.Count()
}

// InsertBatch embeds and stores chunks with their per-chunk metadata.
// len(metadatas) must equal len(chunks).
func (h *Handle) InsertBatch(ctx context.Context, chunks []string, metadatas []map[string]string) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(metadatas) != len(chunks) {
		return fmt.Errorf("got %d metadatas for %d chunks", len(metadatas), len(chunks))
	}
	col := h.col()
	if col == nil {
		return ErrClosed
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:       "chunk-" + strconv.Itoa(i),
			Content:  chunk,
			Metadata: metadatas[i],
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("inserting %d chunks: %w", len(chunks), err)
	}
	return nil
}

// Retrieve pulls up to fetchK candidates by vector similarity, optionally
// reranks them, and returns the top k in final ranked order. A handle torn
// down between lookup and use yields no results, not an error.
func (h *Handle) Retrieve(ctx context.Context, query string, k, fetchK int, useRerank bool) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}
	if fetchK < k {
		fetchK = k
	}

	col := h.col()
	if col == nil {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if fetchK > count {
		fetchK = count
	}

	candidates, err := col.Query(ctx, query, fetchK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Content: c.Content, Metadata: c.Metadata, Similarity: c.Similarity}
	}

	if useRerank && h.reranker != nil {
		results = h.rerankCandidates(ctx, query, results)
	}

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// rerankCandidates reorders candidates by rerank score. A rerank failure
// falls back to vector order.
func (h *Handle) rerankCandidates(ctx context.Context, query string, candidates []Result) []Result {
	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Content
	}

	ranked, err := h.reranker.Rerank(ctx, query, docs)
	if err != nil {
		log.Printf("vecstore: rerank failed, keeping vector order: %v", err)
		return candidates
	}

	reordered := make([]Result, 0, len(candidates))
	for _, r := range ranked {
		if r.Index < 0 || r.Index >= len(candidates) {
			continue
		}
		reordered = append(reordered, candidates[r.Index])
	}
	if len(reordered) == 0 {
		return candidates
	}
	return reordered
}

// Close releases the handle. chromem persists every write as it happens,
// so close only drops the in-memory references; it must still complete
// before the slot directory is removed.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.collection = nil
	h.db = nil
	h.mu.Unlock()
	return nil
}
