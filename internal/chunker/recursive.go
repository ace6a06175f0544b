// Package chunker splits extracted document text into overlapping pieces
// sized for embedding.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// separators are tried in order: paragraph breaks first, then lines, then
// words, then a plain rune split as the last resort.
var separators = []string{"\n\n", "\n", " ", ""}

// Recursive is a recursive character chunker: it splits on the coarsest
// separator that keeps pieces under the chunk size, re-splitting oversized
// pieces with finer separators, and joins adjacent pieces back together
// with a configurable overlap between emitted chunks.
type Recursive struct {
	chunkSize int // max chunk length in runes
	overlap   int // runes carried over between adjacent chunks
}

// NewRecursive creates a chunker with the given size and overlap (runes).
func NewRecursive(chunkSize, overlap int) *Recursive {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Recursive{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits text into chunks of at most the configured size. Whitespace-
// only input yields no chunks.
func (c *Recursive) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return c.split(text, separators)
}

func (c *Recursive) split(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= c.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	sep := ""
	rest := []string{}
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep, rest = s, seps[i+1:]
			break
		}
	}

	// No separator left: cut by rune windows.
	if sep == "" {
		return c.splitRunes(text)
	}

	var pieces []string
	for _, piece := range splitKeepSep(text, sep) {
		if utf8.RuneCountInString(piece) > c.chunkSize {
			// Piece is still too large for this separator level.
			pieces = append(pieces, c.split(piece, rest)...)
		} else {
			pieces = append(pieces, piece)
		}
	}

	return c.merge(pieces)
}

// merge joins adjacent pieces into chunks up to chunkSize, keeping the last
// overlap runes of each emitted chunk as the start of the next.
func (c *Recursive) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		joined := strings.TrimSpace(strings.Join(window, ""))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > c.chunkSize && total > 0 {
			flush()
			// Shrink the window from the front until it fits the overlap.
			for total > c.overlap && len(window) > 0 {
				total -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += n
	}
	flush()

	return chunks
}

// splitRunes cuts text into fixed-size rune windows with overlap. Used only
// when no separator produced pieces small enough.
func (c *Recursive) splitRunes(text string) []string {
	runes := []rune(text)
	step := c.chunkSize - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitKeepSep splits text on sep, keeping the separator attached to the
// end of each piece so nothing is lost when pieces are rejoined.
func splitKeepSep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += sep
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
