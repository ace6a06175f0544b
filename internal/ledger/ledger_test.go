package ledger

import (
	"context"
	"testing"

	"github.com/zz6zz666/filerag/internal/db"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(d)
}

func TestGetAbsent(t *testing.T) {
	l := setupLedger(t)
	if got := l.Get(context.Background(), "s", "c", "report.pdf_1700000000"); got != 0 {
		t.Errorf("Get absent = %d, want 0", got)
	}
}

func TestIncrementCounts(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		l.Increment(ctx, "s", "c", "a.txt_1")
		if got := l.Get(ctx, "s", "c", "a.txt_1"); got != i {
			t.Fatalf("after %d increments Get = %d", i, got)
		}
	}

	// Other slots are unaffected.
	if got := l.Get(ctx, "s", "c", "b.txt_1"); got != 0 {
		t.Errorf("unrelated slot Get = %d, want 0", got)
	}
}

func TestDeleteGranularities(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	seed := []struct{ session, conversation, slot string }{
		{"s1", "c1", "a_1"},
		{"s1", "c1", "b_1"},
		{"s1", "c2", "c_1"},
		{"s2", "c1", "d_1"},
	}
	for _, row := range seed {
		l.Increment(ctx, row.session, row.conversation, row.slot)
	}

	l.DeleteSlot(ctx, "s1", "c1", "a_1")
	if got := l.Get(ctx, "s1", "c1", "a_1"); got != 0 {
		t.Errorf("after DeleteSlot Get = %d", got)
	}
	if got := l.Get(ctx, "s1", "c1", "b_1"); got != 1 {
		t.Errorf("sibling slot lost: Get = %d", got)
	}

	l.DeleteConversation(ctx, "s1", "c1")
	if got := l.Get(ctx, "s1", "c1", "b_1"); got != 0 {
		t.Errorf("after DeleteConversation Get = %d", got)
	}
	if got := l.Get(ctx, "s1", "c2", "c_1"); got != 1 {
		t.Errorf("other conversation lost: Get = %d", got)
	}

	l.DeleteSession(ctx, "s1")
	if got := l.Get(ctx, "s1", "c2", "c_1"); got != 0 {
		t.Errorf("after DeleteSession Get = %d", got)
	}
	if got := l.Get(ctx, "s2", "c1", "d_1"); got != 1 {
		t.Errorf("other session lost: Get = %d", got)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	l := setupLedger(t)
	ctx := context.Background()

	// None of these should panic or log fatally.
	l.DeleteSlot(ctx, "s", "c", "missing_1")
	l.DeleteConversation(ctx, "s", "c")
	l.DeleteSession(ctx, "s")
}
