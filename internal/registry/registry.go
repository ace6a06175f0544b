// Package registry owns the live vector index handles. All handle creation
// and teardown funnels through it, so the one-handle-per-slot and
// directory-follows-handle invariants are enforced in a single place.
package registry

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/rerank"
	"github.com/zz6zz666/filerag/internal/slot"
	"github.com/zz6zz666/filerag/internal/vecstore"
)

// Registry maps slot keys to live index handles rooted under
// baseDir/session/conversation/slot. The mutex guards only the map; index
// I/O happens outside it.
type Registry struct {
	baseDir string

	mu      sync.Mutex
	handles map[slot.Key]*vecstore.Handle
}

// New creates a registry rooted at baseDir.
func New(baseDir string) *Registry {
	return &Registry{
		baseDir: baseDir,
		handles: make(map[slot.Key]*vecstore.Handle),
	}
}

// Dir returns the directory a key's index occupies.
func (r *Registry) Dir(key slot.Key) string {
	return filepath.Join(r.baseDir, key.SessionID, key.ConversationID, key.Slot)
}

// Get returns the live handle for key, if any.
func (r *Registry) Get(key slot.Key) (*vecstore.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[key]
	return h, ok
}

// GetOrCreate returns the existing handle for key or creates one, making
// the backing directory and binding the embedder (required) and reranker
// (optional). Repeated calls with the same key return the same handle.
func (r *Registry) GetOrCreate(key slot.Key, embedder embeddings.Embedder, reranker rerank.Reranker) (*vecstore.Handle, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	r.mu.Lock()
	if h, ok := r.handles[key]; ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	h, err := vecstore.Open(r.Dir(key), embedder, reranker)
	if err != nil {
		return nil, fmt.Errorf("opening index for %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another caller may have won the race while the index was opening.
	if existing, ok := r.handles[key]; ok {
		h.Close()
		return existing, nil
	}
	r.handles[key] = h
	return h, nil
}

// Keys returns a snapshot of every registered key.
func (r *Registry) Keys() []slot.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]slot.Key, 0, len(r.handles))
	for k := range r.handles {
		keys = append(keys, k)
	}
	return keys
}

// KeysFor returns a snapshot of keys belonging to one conversation.
func (r *Registry) KeysFor(sessionID, conversationID string) []slot.Key {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []slot.Key
	for k := range r.handles {
		if k.SessionID == sessionID && k.ConversationID == conversationID {
			keys = append(keys, k)
		}
	}
	return keys
}

// Teardown closes the handle for key and deletes its directory. Calling it
// for an absent key is a no-op, so double teardown is safe. The entry
// leaves the map before the handle closes; a reader holding the old handle
// sees empty results, never a half-deleted index.
func (r *Registry) Teardown(ctx context.Context, key slot.Key) error {
	r.mu.Lock()
	h, ok := r.handles[key]
	if ok {
		delete(r.handles, key)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}

	if err := h.Close(); err != nil {
		log.Printf("registry: closing handle for %s: %v", key, err)
	}
	if err := os.RemoveAll(r.Dir(key)); err != nil {
		return fmt.Errorf("removing index directory for %s: %w", key, err)
	}
	return nil
}

// TeardownConversation tears down every slot in a conversation and removes
// the conversation directory subtree.
func (r *Registry) TeardownConversation(ctx context.Context, sessionID, conversationID string) error {
	for _, key := range r.KeysFor(sessionID, conversationID) {
		if err := r.Teardown(ctx, key); err != nil {
			log.Printf("registry: teardown %s: %v", key, err)
		}
	}

	dir := filepath.Join(r.baseDir, sessionID, conversationID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing conversation directory %s: %w", dir, err)
	}
	return nil
}

// TeardownSession tears down every slot in a session and removes the
// session directory subtree.
func (r *Registry) TeardownSession(ctx context.Context, sessionID string) error {
	for _, key := range r.Keys() {
		if key.SessionID != sessionID {
			continue
		}
		if err := r.Teardown(ctx, key); err != nil {
			log.Printf("registry: teardown %s: %v", key, err)
		}
	}

	dir := filepath.Join(r.baseDir, sessionID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing session directory %s: %w", dir, err)
	}
	return nil
}

// CloseAll closes every handle without touching the on-disk indexes. Used
// by the shutdown sequence; persisted indexes are reclaimed by age on
// later runs.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	handles := make([]*vecstore.Handle, 0, len(r.handles))
	for k, h := range r.handles {
		handles = append(handles, h)
		delete(r.handles, k)
	}
	r.mu.Unlock()

	for _, h := range handles {
		if err := h.Close(); err != nil {
			log.Printf("registry: closing handle on shutdown: %v", err)
		}
	}
}
