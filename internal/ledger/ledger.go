// Package ledger persists per-file usage round counts in SQLite.
//
// The ledger is best-effort by contract: a storage failure must never
// surface into the chat pipeline, so every method catches its own errors,
// logs them and degrades to a no-op (Get reads as 0). An absent row also
// reads as 0.
package ledger

import (
	"context"
	"database/sql"
	"log"

	"github.com/zz6zz666/filerag/internal/db"
)

// Ledger tracks how many request rounds each (session, conversation, slot)
// has been consulted for.
type Ledger struct {
	db *db.DB
}

// New creates a ledger backed by the given database.
func New(database *db.DB) *Ledger {
	return &Ledger{db: database}
}

// Get returns the round count for a slot, or 0 if absent or on error.
func (l *Ledger) Get(ctx context.Context, sessionID, conversationID, slot string) int {
	var rounds int
	err := l.db.QueryRowContext(ctx,
		`SELECT rounds FROM file_rounds WHERE session_id = ? AND conversation_id = ? AND slot = ?`,
		sessionID, conversationID, slot,
	).Scan(&rounds)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		log.Printf("ledger: get rounds for %s/%s/%s: %v", sessionID, conversationID, slot, err)
		return 0
	}
	return rounds
}

// Increment adds one round to a slot, inserting the row if absent.
func (l *Ledger) Increment(ctx context.Context, sessionID, conversationID, slot string) {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO file_rounds (session_id, conversation_id, slot, rounds)
		 VALUES (?, ?, ?, 1)
		 ON CONFLICT (session_id, conversation_id, slot)
		 DO UPDATE SET rounds = rounds + 1`,
		sessionID, conversationID, slot,
	)
	if err != nil {
		log.Printf("ledger: increment rounds for %s/%s/%s: %v", sessionID, conversationID, slot, err)
	}
}

// DeleteSlot removes the row for a single slot.
func (l *Ledger) DeleteSlot(ctx context.Context, sessionID, conversationID, slot string) {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM file_rounds WHERE session_id = ? AND conversation_id = ? AND slot = ?`,
		sessionID, conversationID, slot,
	)
	if err != nil {
		log.Printf("ledger: delete rounds for %s/%s/%s: %v", sessionID, conversationID, slot, err)
	}
}

// DeleteConversation removes every row belonging to a conversation.
func (l *Ledger) DeleteConversation(ctx context.Context, sessionID, conversationID string) {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM file_rounds WHERE session_id = ? AND conversation_id = ?`,
		sessionID, conversationID,
	)
	if err != nil {
		log.Printf("ledger: delete conversation rounds for %s/%s: %v", sessionID, conversationID, err)
	}
}

// DeleteSession removes every row belonging to a session.
func (l *Ledger) DeleteSession(ctx context.Context, sessionID string) {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM file_rounds WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		log.Printf("ledger: delete session rounds for %s: %v", sessionID, err)
	}
}
