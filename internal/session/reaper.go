package session

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/slot"
)

// RunReaper periodically sweeps expired slots until the context is
// cancelled. Run it in its own goroutine.
func (m *Manager) RunReaper(ctx context.Context) {
	interval := m.cfg.CleanupIntervalDuration()
	log.Printf("session: reaper running every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("session: reaper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				log.Printf("session: reaper reclaimed %d slots", n)
			}
		}
	}
}

// Sweep expires dead slots across every registered session and returns
// how many were reclaimed. One bad slot never stops the rest.
func (m *Manager) Sweep(ctx context.Context) int {
	policy := m.policy()
	now := m.now()
	n := 0
	for _, key := range m.registry.Keys() {
		if policy.Expired(ctx, key, now) {
			m.reclaim(ctx, key)
			n++
		}
	}
	return n
}

// SweepDisk removes on-disk indexes left behind by a previous run: slots
// already past retention, and whole sessions belonging to groups that are
// no longer authorized. Call it once at startup, before any handles are
// opened.
func (m *Manager) SweepDisk(ctx context.Context) {
	base := filepath.Join(m.cfg.DataDir, "vectors")
	sessions, err := os.ReadDir(base)
	if err != nil {
		return
	}

	policy := m.policy()
	now := m.now()
	for _, sess := range sessions {
		if !sess.IsDir() {
			continue
		}
		sessionID := sess.Name()
		sessionDir := filepath.Join(base, sessionID)

		if gid, isGroup := groupOf(sessionID); isGroup && !m.groupAllowed(gid) {
			log.Printf("session: removing indexes of unauthorized group session %s", sessionID)
			if err := os.RemoveAll(sessionDir); err != nil {
				log.Printf("session: removing %s: %v", sessionDir, err)
			}
			m.ledger.DeleteSession(ctx, sessionID)
			continue
		}

		convs, err := os.ReadDir(sessionDir)
		if err != nil {
			continue
		}
		for _, conv := range convs {
			if !conv.IsDir() {
				continue
			}
			m.sweepConversationDir(ctx, policy, now, sessionID, conv.Name())
		}
	}
}

func (m *Manager) sweepConversationDir(ctx context.Context, policy slot.ExpiryPolicy, now time.Time, sessionID, conversationID string) {
	dir := filepath.Join(m.cfg.DataDir, "vectors", sessionID, conversationID)
	slots, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, s := range slots {
		if !s.IsDir() {
			continue
		}
		key := slot.Key{SessionID: sessionID, ConversationID: conversationID, Slot: s.Name()}
		if !policy.Expired(ctx, key, now) {
			continue
		}
		log.Printf("session: removing stale index %s", key)
		if err := os.RemoveAll(filepath.Join(dir, s.Name())); err != nil {
			log.Printf("session: removing stale index %s: %v", key, err)
		}
		m.ledger.DeleteSlot(ctx, sessionID, conversationID, s.Name())
	}
}

// groupOf extracts the group id from a "<platform>:<kind>:<origin>"
// session id when the kind is a group conversation.
func groupOf(sessionID string) (groupID string, isGroup bool) {
	parts := strings.SplitN(sessionID, ":", 3)
	if len(parts) != 3 || parts[1] != string(chat.GroupMessage) {
		return "", false
	}
	return parts[2], true
}
