package slot

import (
	"context"
	"time"
)

// RoundReader reads the usage round count for a slot. Implemented by the
// ledger; the read is best-effort and absent slots count as 0.
type RoundReader interface {
	Get(ctx context.Context, sessionID, conversationID, slot string) int
}

// ExpiryPolicy decides when a slot's index should be reclaimed. A slot is
// expired when its age exceeds Retention OR its round count has reached
// MaxRounds; either condition alone is sufficient.
type ExpiryPolicy struct {
	Retention time.Duration
	MaxRounds int
	Rounds    RoundReader
}

// Expired reports whether the slot identified by key is expired at the
// given instant. A slot name without a parsable upload timestamp is treated
// as expired: an index the policy cannot date is stale by definition.
func (p ExpiryPolicy) Expired(ctx context.Context, key Key, now time.Time) bool {
	_, uploadedAt, ok := Parse(key.Slot)
	if !ok {
		return true
	}

	if now.Sub(uploadedAt) > p.Retention {
		return true
	}

	return p.Rounds.Get(ctx, key.SessionID, key.ConversationID, key.Slot) >= p.MaxRounds
}
