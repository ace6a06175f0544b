package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkShortText(t *testing.T) {
	c := NewRecursive(512, 100)
	chunks := c.Chunk("a short document")
	if len(chunks) != 1 || chunks[0] != "a short document" {
		t.Errorf("Chunk() = %v", chunks)
	}
}

func TestChunkEmpty(t *testing.T) {
	c := NewRecursive(512, 100)
	for _, text := range []string{"", "   ", "\n\n\n"} {
		if chunks := c.Chunk(text); chunks != nil {
			t.Errorf("Chunk(%q) = %v, want nil", text, chunks)
		}
	}
}

func TestChunkSizeLimit(t *testing.T) {
	c := NewRecursive(50, 10)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("some words in a paragraph. ")
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}

	chunks := c.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 50 {
			t.Errorf("chunk %d has %d runes, max 50", i, n)
		}
	}
}

func TestChunkPrefersParagraphBreaks(t *testing.T) {
	c := NewRecursive(40, 0)
	text := "first paragraph here.\n\nsecond paragraph here.\n\nthird paragraph here."

	chunks := c.Chunk(text)
	for i, chunk := range chunks {
		if strings.Contains(chunk, "\n\n") {
			t.Errorf("chunk %d spans a paragraph break: %q", i, chunk)
		}
	}
}

func TestChunkCoversAllContent(t *testing.T) {
	c := NewRecursive(30, 5)
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	text := strings.Join(words, " ")

	joined := strings.Join(c.Chunk(text), " ")
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q missing from chunks", w)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c := NewRecursive(20, 8)
	text := strings.Repeat("word ", 30)

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// With overlap, the tail of one chunk reappears at the head of the next.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-4:]
		if !strings.Contains(chunks[i], strings.TrimSpace(tail)) {
			t.Errorf("chunk %d does not overlap with its predecessor", i)
		}
	}
}

func TestChunkUnbrokenRun(t *testing.T) {
	// A single run with no separators at all is cut by rune windows.
	c := NewRecursive(10, 2)
	chunks := c.Chunk(strings.Repeat("x", 35))
	if len(chunks) < 4 {
		t.Fatalf("expected rune-window chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if utf8.RuneCountInString(chunk) > 10 {
			t.Errorf("chunk %d exceeds size: %q", i, chunk)
		}
	}
}
