// Package chunker splits raw document text into overlapping, size-bounded
// segments cut at natural boundaries so that no requirement statement is
// torn apart mid-sentence more often than necessary.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "reqgraph/pkg/errors"
)

const (
	// DefaultMaxSize is ~2,000 tokens worth of characters
	DefaultMaxSize = 8000
	// DefaultOverlap is the trailing context repeated in the next chunk
	DefaultOverlap = 500

	// maxChunks guards against pathological inputs lacking any breakpoint
	maxChunks = 1000
)

// Split segments text into chunks of at most max bytes. Each chunk after
// the first begins with the last overlap bytes of its predecessor. Cuts
// prefer, in order: paragraph break, line break, sentence terminator,
// word boundary; failing all of those within the search window, the hard
// cut stands. Chunks are returned in document order and reconstruct the
// original text when each non-first chunk's overlap prefix is removed.
func Split(text string, max, overlap int) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= max {
		overlap = max / 4
	}
	if len(text) <= max {
		return []string{text}, nil
	}

	// Breakpoints are only honored near the end of a slice, otherwise a
	// single early newline could shrink every chunk.
	window := overlap
	if window <= 0 {
		window = max / 10
	}

	var chunks []string
	pos := 0
	for {
		if len(chunks) >= maxChunks {
			return nil, apperrors.NewChunkingFailed(len(text), fmt.Sprintf("exceeded %d chunks", maxChunks))
		}

		end := pos + max
		if end >= len(text) {
			chunks = append(chunks, text[pos:])
			return chunks, nil
		}

		slice := text[pos:end]
		cut := findCut(slice, window)
		if cut <= overlap {
			cut = len(slice)
		}
		// A hard cut may land inside a multi-byte rune; back off to the
		// rune start. Breakpoint cuts follow ASCII and are already aligned.
		for cut > 0 && !utf8.RuneStart(text[pos+cut]) {
			cut--
		}
		// The next chunk's start needs the same alignment, otherwise any
		// overlap that is not a multiple of the rune width at the boundary
		// would begin every continuation chunk mid-rune. Backing off only
		// widens the repeated prefix by at most utf8.UTFMax-1 bytes.
		next := pos + cut - overlap
		for next > pos && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= pos {
			return nil, apperrors.NewChunkingFailed(len(text), "overlap prevents forward progress")
		}

		chunks = append(chunks, slice[:cut])
		pos = next
	}
}

// findCut returns the byte offset to cut slice at, searching the trailing
// window for the highest-priority natural breakpoint. The cut lands just
// after the breakpoint so the separator stays with the earlier chunk.
func findCut(slice string, window int) int {
	start := len(slice) - window
	if start < 0 {
		start = 0
	}

	if idx := strings.LastIndex(slice, "\n\n"); idx >= start {
		return idx + 2
	}
	if idx := strings.LastIndex(slice, "\n"); idx >= start {
		return idx + 1
	}
	if idx := lastSentenceEnd(slice); idx >= start {
		return idx + 2
	}
	if idx := strings.LastIndex(slice, " "); idx >= start {
		return idx + 1
	}
	return len(slice)
}

// lastSentenceEnd returns the index of the final sentence terminator
// followed by a space, or -1.
func lastSentenceEnd(s string) int {
	best := -1
	for _, term := range []string{". ", "! ", "? "} {
		if idx := strings.LastIndex(s, term); idx > best {
			best = idx
		}
	}
	return best
}
