// Package chat defines the platform-neutral message model: inbound events
// carrying file attachments, and the outbound LLM request hook whose prompt
// and context history the engine mutates before dispatch.
package chat

import "context"

// MessageType distinguishes direct from group conversations.
type MessageType string

const (
	DirectMessage MessageType = "DirectMessage"
	GroupMessage  MessageType = "GroupMessage"
)

// Attachment is one file carried by an inbound event. GetFile stages the
// file locally and returns its path; the base name of the returned path is
// the original file name.
type Attachment interface {
	Name() string
	GetFile(ctx context.Context) (string, error)
}

// Event is an inbound chat message.
type Event struct {
	SessionID   string
	Type        MessageType
	GroupID     string
	Text        string
	Attachments []Attachment

	// Reply sends a user-visible message back to the event's origin.
	// May be nil when the platform cannot reply.
	Reply func(ctx context.Context, text string) error
}

// IsGroup reports whether the event originated from a group conversation.
func (e *Event) IsGroup() bool {
	return e.Type == GroupMessage
}

// Send replies to the event, swallowing a nil Reply.
func (e *Event) Send(ctx context.Context, text string) error {
	if e.Reply == nil {
		return nil
	}
	return e.Reply(ctx, text)
}

// Roles used in conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an outbound LLM request at the mutation hook: the engine may
// rewrite Prompt and insert or prune Contexts before the host dispatches it.
type Request struct {
	SessionID string
	Prompt    string
	Contexts  []Message
}
