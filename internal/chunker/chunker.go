// Package chunker splits extracted page text into overlapping,
// token-bounded, sentence-aligned chunks.
package chunker

import (
	"crypto/md5" //nolint:gosec // Content fingerprint, not a security boundary.
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// DefaultTargetTokens is the default soft upper bound on chunk size.
const DefaultTargetTokens = 1000

// DefaultOverlapTokens is the default overlap carried between chunks.
const DefaultOverlapTokens = 200

// Chunker splits document text into chunks.
type Chunker struct {
	targetTokens  int
	overlapTokens int
	counter       TokenCounter
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetTokens sets the soft chunk size bound in tokens.
func WithTargetTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.targetTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap bound in tokens.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// WithTokenCounter replaces the token counter. Useful for tests.
func WithTokenCounter(tc TokenCounter) Option {
	return func(c *Chunker) {
		if tc != nil {
			c.counter = tc
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetTokens:  DefaultTargetTokens,
		overlapTokens: DefaultOverlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't swallow whole chunks
	if c.overlapTokens >= c.targetTokens {
		c.overlapTokens = c.targetTokens / 4
	}

	if c.counter == nil {
		c.counter = DefaultTokenCounter()
	}
	if !c.counter.Exact() {
		logger.Warn("Subword tokenizer unavailable, chunk sizes are approximate (whitespace counting)")
	}

	return c
}

// pageBoundary records where one page's text sits in the concatenated
// buffer.
type pageBoundary struct {
	start, end int
	page       int
}

// Chunk splits the ordered page texts of a document into chunks with
// sequential indices. Empty input yields no chunks. Chunk char ranges
// are monotonically non-decreasing, overlapping only where sentence
// overlap was carried.
func (c *Chunker) Chunk(documentID string, pages []domain.Page) []domain.Chunk {
	var buf strings.Builder
	boundaries := make([]pageBoundary, 0, len(pages))
	for _, p := range pages {
		boundaries = append(boundaries, pageBoundary{
			start: buf.Len(),
			end:   buf.Len() + len(p.Text),
			page:  p.Number,
		})
		buf.WriteString(p.Text)
	}

	fullText := buf.String()
	if strings.TrimSpace(fullText) == "" {
		return nil
	}

	sentences := splitSentences(fullText)

	var (
		chunks    []domain.Chunk
		current   []string
		curTokens int
		searchPos int
		index     int
	)

	flush := func() {
		text := strings.Join(current, " ")

		// Locate the chunk by its first sentence, searching forward
		// from the last flush position so duplicate sentences earlier
		// in the document cannot move ranges backwards.
		charStart := searchPos
		if idx := strings.Index(fullText[searchPos:], current[0]); idx >= 0 {
			charStart = searchPos + idx
		}
		charEnd := charStart + len(text)

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Index:      index,
			Text:       text,
			Page:       findPage(charStart, boundaries),
			CharStart:  charStart,
			CharEnd:    charEnd,
			Checksum:   checksum(text),
			TokenCount: curTokens,
		})
		index++

		// Carry trailing sentences into the next chunk as overlap.
		var overlap []string
		overlapTokens := 0
		for i := len(current) - 1; i >= 0; i-- {
			st := c.counter.Count(current[i])
			if overlapTokens+st > c.overlapTokens {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapTokens += st
		}

		searchPos = charStart + len(text) - len(strings.Join(overlap, " "))
		current = overlap
		curTokens = overlapTokens
	}

	for _, sentence := range sentences {
		st := c.counter.Count(sentence)

		// The first sentence of a chunk is always admitted, even when
		// it alone exceeds the target. Guarantees forward progress.
		if len(current) > 0 && curTokens+st > c.targetTokens {
			flush()
		}
		current = append(current, sentence)
		curTokens += st
	}

	if len(current) > 0 {
		flush()
	}

	logger.Debug("Chunked document %s: %d chunks from %d pages", documentID, len(chunks), len(pages))
	return chunks
}

// splitSentences splits text at sentence terminators followed by
// whitespace, preserving the sentence text verbatim.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	byteIdx := 0
	terminated := false
	for _, r := range runes {
		size := len(string(r))
		if terminated {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				s := strings.TrimSpace(text[start:byteIdx])
				if s != "" {
					sentences = append(sentences, s)
				}
				start = byteIdx
			}
			terminated = false
		}
		if r == '.' || r == '!' || r == '?' {
			terminated = true
		}
		byteIdx += size
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// findPage resolves the owning page for a character offset, falling
// back to the last page when the offset is past all boundaries.
func findPage(offset int, boundaries []pageBoundary) int {
	for _, b := range boundaries {
		if offset >= b.start && offset < b.end {
			return b.page
		}
	}
	if len(boundaries) > 0 {
		return boundaries[len(boundaries)-1].page
	}
	return 0
}

// checksum returns the content hash of a chunk's text.
func checksum(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // Change detection only.
	return hex.EncodeToString(sum[:])
}
