package chat

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conversations maps each session to its current conversation. Sessions
// appear implicitly on first use; a conversation lives until the session
// is reset.
type Conversations struct {
	mu      sync.Mutex
	current map[string]string // session id -> conversation id
}

// NewConversations creates an empty conversation manager.
func NewConversations() *Conversations {
	return &Conversations{current: make(map[string]string)}
}

// Current returns the session's active conversation id, creating a new
// conversation when none is active.
func (c *Conversations) Current(sessionID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.current[sessionID]; ok {
		return id
	}

	id := uuid.New().String()
	c.current[sessionID] = id
	log.Printf("chat: new conversation %s for session %s", id, sessionID)
	return id
}

// Reset forgets the session's active conversation; the next Current call
// starts a fresh one.
func (c *Conversations) Reset(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.current, sessionID)
}
