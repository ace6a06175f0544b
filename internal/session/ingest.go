package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/embeddings"
	"github.com/zz6zz666/filerag/internal/extract"
	"github.com/zz6zz666/filerag/internal/slot"
	"github.com/zz6zz666/filerag/internal/vecstore"
)

// embedResolveAttempts bounds how many times a provider resolution is
// retried per file before giving up.
const embedResolveAttempts = 2

// HandleFiles ingests every attachment on the event into the session's
// active conversation. Unauthorized group events are dropped without a
// reply; per-file failures are reported to the user and do not abort the
// remaining attachments.
func (m *Manager) HandleFiles(ctx context.Context, ev *chat.Event) {
	if ev.IsGroup() && !m.groupAllowed(ev.GroupID) {
		return
	}

	conversationID := m.conversations.Current(ev.SessionID)
	for _, att := range ev.Attachments {
		if err := m.ingestOne(ctx, ev, conversationID, att); err != nil {
			log.Printf("session: ingesting %s for %s: %v", att.Name(), ev.SessionID, err)
			ev.Send(ctx, fmt.Sprintf("Failed to process file %s: %v", att.Name(), err))
		}
	}
}

// groupAllowed reports whether group uploads are enabled and the group id
// matches one of the configured patterns. An empty pattern list allows
// every group.
func (m *Manager) groupAllowed(groupID string) bool {
	if !m.cfg.EnableGroupFileProcessing {
		return false
	}
	if len(m.cfg.EnabledGroups) == 0 {
		return true
	}
	for _, pattern := range m.cfg.EnabledGroups {
		if ok, err := doublestar.Match(pattern, groupID); err == nil && ok {
			return true
		}
	}
	return false
}

func (m *Manager) ingestOne(ctx context.Context, ev *chat.Event, conversationID string, att chat.Attachment) error {
	path, err := att.GetFile(ctx)
	if err != nil {
		return fmt.Errorf("fetching file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if info.Size() > m.cfg.MaxFileSizeBytes() {
		ev.Send(ctx, fmt.Sprintf("File %s exceeds the %d MB size limit and was skipped.", att.Name(), m.cfg.MaxFileSize))
		return nil
	}

	// Trust content sniffing over the declared extension; nameless
	// uploads gain the sniffed extension for type checks and labels.
	if completed := extract.CompleteFilename(path); completed != path {
		if err := os.Rename(path, completed); err == nil {
			path = completed
		}
	}
	ext := extract.DetectType(path)
	if !m.cfg.TypeSupported(ext) {
		ev.Send(ctx, fmt.Sprintf("File type %q is not supported; %s was skipped.", ext, att.Name()))
		return nil
	}

	text, err := extract.Text(path, ext)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		ev.Send(ctx, fmt.Sprintf("No readable text found in %s; nothing was indexed.", att.Name()))
		return nil
	}

	embedder, err := m.resolveEmbedder()
	if err != nil {
		return err
	}

	originalName := filepath.Base(path)
	key := slot.Key{
		SessionID:      ev.SessionID,
		ConversationID: conversationID,
		Slot:           slot.Encode(originalName, m.now()),
	}
	handle, err := m.registry.GetOrCreate(key, embedder, m.reranker)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	chunks := m.chunker.Chunk(text)
	if len(chunks) == 0 {
		ev.Send(ctx, fmt.Sprintf("No readable text found in %s; nothing was indexed.", att.Name()))
		m.reclaim(ctx, key)
		return nil
	}

	metadatas := make([]map[string]string, len(chunks))
	for i := range chunks {
		metadatas[i] = map[string]string{
			vecstore.MetaFileName:   originalName,
			vecstore.MetaChunkIndex: strconv.Itoa(i),
		}
	}
	if err := handle.InsertBatch(ctx, chunks, metadatas); err != nil {
		m.reclaim(ctx, key)
		return fmt.Errorf("indexing chunks: %w", err)
	}

	// The staged copy has served its purpose.
	if err := os.Remove(path); err != nil {
		log.Printf("session: removing staged file %s: %v", path, err)
	}

	log.Printf("session: indexed %s as %s (%d chunks)", originalName, key, len(chunks))
	ev.Send(ctx, fmt.Sprintf("File %s processed: %d fragments indexed. Its content will inform replies in this conversation.", originalName, len(chunks)))
	return nil
}

// resolveEmbedder retries provider resolution a bounded number of times;
// transient misconfiguration (a key exported between attempts) gets one
// more chance, nothing loops forever.
func (m *Manager) resolveEmbedder() (embeddings.Embedder, error) {
	var err error
	for attempt := 0; attempt < embedResolveAttempts; attempt++ {
		var e embeddings.Embedder
		if e, err = m.embedders.Resolve(); err == nil {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no embedding provider available: %w", err)
}
