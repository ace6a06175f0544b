// Package session is the engine core: it owns the per-slot index registry,
// the usage-round ledger, and the conversation map, and drives ingestion,
// retrieval injection, and background reclamation.
package session

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/chunker"
	"github.com/zz6zz666/filerag/internal/config"
	"github.com/zz6zz666/filerag/internal/db"
	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/ledger"
	"github.com/zz6zz666/filerag/internal/registry"
	"github.com/zz6zz666/filerag/internal/rerank"
	"github.com/zz6zz666/filerag/internal/slot"
)

// EmbedderSource yields the currently usable embedder. Resolution happens
// per ingestion so provider availability (API keys, local daemons) is
// re-checked instead of pinned at startup.
type EmbedderSource interface {
	Resolve() (embeddings.Embedder, error)
}

// Manager coordinates every per-conversation file index. All public
// methods are best-effort at the chat boundary: failures are logged and
// reported to the user where a reply channel exists, never raised into
// the host pipeline.
type Manager struct {
	cfg           *config.Config
	registry      *registry.Registry
	ledger        *ledger.Ledger
	conversations *chat.Conversations
	chunker       *chunker.Recursive
	embedders     EmbedderSource
	reranker      rerank.Reranker

	// now is swappable for expiry tests.
	now func() time.Time
}

// New wires a manager over an open database. The vector indexes live under
// <data_dir>/vectors/<session>/<conversation>/<slot>.
func New(cfg *config.Config, database *db.DB, embedders EmbedderSource, reranker rerank.Reranker) *Manager {
	return &Manager{
		cfg:           cfg,
		registry:      registry.New(filepath.Join(cfg.DataDir, "vectors")),
		ledger:        ledger.New(database),
		conversations: chat.NewConversations(),
		chunker:       chunker.NewRecursive(cfg.ChunkSize, cfg.ChunkOverlap),
		embedders:     embedders,
		reranker:      reranker,
		now:           time.Now,
	}
}

// Registry exposes the index registry for surfaces that enumerate slots.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Conversations exposes the session-to-conversation map.
func (m *Manager) Conversations() *chat.Conversations {
	return m.conversations
}

func (m *Manager) policy() slot.ExpiryPolicy {
	return slot.ExpiryPolicy{
		Retention: m.cfg.RetentionDuration(),
		MaxRounds: m.cfg.FileMaxRounds,
		Rounds:    m.ledger,
	}
}

// ClearSession tears down every index the session owns across all of its
// conversations, forgets its ledger rows and active conversation, and
// returns a user-visible confirmation.
func (m *Manager) ClearSession(ctx context.Context, sessionID string) string {
	n := 0
	for _, key := range m.registry.Keys() {
		if key.SessionID == sessionID {
			n++
		}
	}
	if err := m.registry.TeardownSession(ctx, sessionID); err != nil {
		log.Printf("session: clearing %s: %v", sessionID, err)
	}
	m.ledger.DeleteSession(ctx, sessionID)
	m.conversations.Reset(sessionID)

	if n == 0 {
		return "No uploaded files to clear for this session."
	}
	return "Cleared all uploaded file data for this session."
}

// ClearConversation tears down every index of one conversation without
// touching the session's other conversations.
func (m *Manager) ClearConversation(ctx context.Context, sessionID, conversationID string) {
	if err := m.registry.TeardownConversation(ctx, sessionID, conversationID); err != nil {
		log.Printf("session: clearing conversation %s/%s: %v", sessionID, conversationID, err)
	}
	m.ledger.DeleteConversation(ctx, sessionID, conversationID)
}

// reclaim removes one slot everywhere: registry entry and handle, on-disk
// index, and ledger row. The ledger row goes last so a crash mid-teardown
// leaves an over-counted slot rather than an undead one.
func (m *Manager) reclaim(ctx context.Context, key slot.Key) {
	if err := m.registry.Teardown(ctx, key); err != nil {
		log.Printf("session: reclaiming %s: %v", key, err)
	}
	m.ledger.DeleteSlot(ctx, key.SessionID, key.ConversationID, key.Slot)
}

// Close releases in-memory handles. On-disk indexes and ledger rows stay
// for the next run.
func (m *Manager) Close() {
	m.registry.CloseAll()
}
