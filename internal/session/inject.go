package session

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zz6zz666/filerag/internal/chat"
	"github.com/zz6zz666/filerag/internal/config"
	"github.com/zz6zz666/filerag/internal/slot"
	"github.com/zz6zz666/filerag/internal/vecstore"
)

// injectionHeader opens every injected context block. It doubles as the
// marker that identifies previously injected system messages when pruning.
const injectionHeader = "The user has uploaded files in this conversation. Relevant file content:"

// hit is one retrieved fragment tagged with its source file.
type hit struct {
	file    string
	content string
}

// OnRequest is the pre-dispatch hook: it expires dead slots, retrieves
// relevant fragments from every surviving file index, and injects the
// merged block into the request. Failures degrade to an unmodified
// request; the host pipeline never sees an error.
func (m *Manager) OnRequest(ctx context.Context, req *chat.Request) {
	conversationID := m.conversations.Current(req.SessionID)
	keys := m.registry.KeysFor(req.SessionID, conversationID)
	if len(keys) == 0 {
		return
	}

	policy := m.policy()
	now := m.now()
	survivors := keys[:0:0]
	for _, key := range keys {
		if policy.Expired(ctx, key, now) {
			log.Printf("session: slot %s expired", key)
			m.reclaim(ctx, key)
			continue
		}
		survivors = append(survivors, key)
	}
	if len(survivors) == 0 {
		return
	}

	hits := m.retrieveAll(ctx, req.Prompt, survivors)

	// Each surviving slot spends one round per request, hit or miss.
	for _, key := range survivors {
		m.ledger.Increment(ctx, key.SessionID, key.ConversationID, key.Slot)
	}

	if len(hits) == 0 {
		if m.cfg.NotifyOnNoMatch {
			log.Printf("session: no uploaded file content matched the request for %s", req.SessionID)
		}
		return
	}

	block := buildBlock(hits)
	switch m.cfg.InjectionType {
	case config.InjectionPrompt:
		req.Prompt = req.Prompt + "\n\n" + block
	default:
		req.Contexts = pruneSystemContext(req.Contexts, m.cfg.SystemContextKeepRounds)
		req.Contexts = append(req.Contexts, chat.Message{Role: chat.RoleSystem, Content: block})
	}
}

// retrieveAll queries every surviving slot and concatenates the results
// in slot order, preserving the index's own ranking within each slot. A
// slot whose handle vanished or whose query fails simply contributes
// nothing.
func (m *Manager) retrieveAll(ctx context.Context, query string, keys []slot.Key) []hit {
	var hits []hit
	for _, key := range keys {
		handle, ok := m.registry.Get(key)
		if !ok {
			continue
		}
		results, err := handle.Retrieve(ctx, query, m.cfg.RetrieveTopK, m.cfg.FetchK, m.cfg.EnableRerank)
		if err != nil {
			log.Printf("session: retrieving from %s: %v", key, err)
			continue
		}
		name, _, _ := slot.Parse(key.Slot)
		for _, res := range results {
			h := hit{file: name, content: res.Content}
			if fn := res.Metadata[vecstore.MetaFileName]; fn != "" {
				h.file = fn
			}
			hits = append(hits, h)
		}
	}
	return hits
}

// buildBlock renders the merged fragments: a distinct file list followed
// by each fragment labelled with its source file and rank.
func buildBlock(hits []hit) string {
	var files []string
	seen := map[string]bool{}
	for _, h := range hits {
		if !seen[h.file] {
			seen[h.file] = true
			files = append(files, h.file)
		}
	}

	var b strings.Builder
	b.WriteString(injectionHeader)
	b.WriteString("\nFiles: ")
	b.WriteString(strings.Join(files, ", "))
	b.WriteString("\n")
	for i, h := range hits {
		fmt.Fprintf(&b, "\n[%s] fragment %d:\n%s\n", h.file, i+1, h.content)
	}
	b.WriteString("\nAnswer using this file content where it is relevant.")
	return b.String()
}

// pruneSystemContext removes system-role messages that fall outside the
// last keepRounds-1 conversation rounds, bounding context growth from
// repeated injection. A round ends at an assistant message. keepRounds of
// 1 removes every system message; 0 or less disables pruning.
func pruneSystemContext(contexts []chat.Message, keepRounds int) []chat.Message {
	if keepRounds <= 0 {
		return contexts
	}

	// cutoff is the index of the assistant message ending the
	// keepRounds-th round from the end; system messages at or before it
	// are dropped. keepRounds of 1 drops them all.
	cutoff := -1
	if keepRounds == 1 {
		cutoff = len(contexts) - 1
	} else {
		count := 0
		for i := len(contexts) - 1; i >= 0; i-- {
			if contexts[i].Role == chat.RoleAssistant {
				count++
				if count == keepRounds {
					cutoff = i
					break
				}
			}
		}
	}

	out := contexts[:0:0]
	for i, msg := range contexts {
		if msg.Role == chat.RoleSystem && i <= cutoff {
			continue
		}
		out = append(out, msg)
	}
	return out
}
