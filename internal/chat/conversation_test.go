package chat

import "testing"

func TestCurrentIsStable(t *testing.T) {
	c := NewConversations()

	first := c.Current("session-a")
	if first == "" {
		t.Fatal("Current() returned empty id")
	}
	if again := c.Current("session-a"); again != first {
		t.Errorf("Current() changed: %q then %q", first, again)
	}
}

func TestCurrentIsolatesSessions(t *testing.T) {
	c := NewConversations()
	if c.Current("a") == c.Current("b") {
		t.Error("different sessions share a conversation id")
	}
}

func TestResetStartsNewConversation(t *testing.T) {
	c := NewConversations()

	first := c.Current("session-a")
	c.Reset("session-a")
	if second := c.Current("session-a"); second == first {
		t.Error("Reset did not start a new conversation")
	}
}
