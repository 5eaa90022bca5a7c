package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// fixedCounter counts whitespace words and reports itself exact, so
// tests are deterministic regardless of tokenizer availability.
type fixedCounter struct{}

func (fixedCounter) Count(text string) int { return len(strings.Fields(text)) }
func (fixedCounter) Exact() bool           { return true }

func newTestChunker(target, overlap int) *Chunker {
	return New(
		WithTargetTokens(target),
		WithOverlapTokens(overlap),
		WithTokenCounter(fixedCounter{}),
	)
}

func manySentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Sentence number %d has exactly seven words total. ", i)
	}
	return b.String()
}

func TestChunk_EmptyInput(t *testing.T) {
	c := newTestChunker(100, 20)

	assert.Nil(t, c.Chunk("doc-1", nil))
	assert.Nil(t, c.Chunk("doc-1", []domain.Page{{Number: 1, Text: "   \n\t "}}))
}

func TestChunk_SingleShortInput(t *testing.T) {
	c := newTestChunker(100, 20)

	chunks := c.Chunk("doc-1", []domain.Page{{Number: 1, Text: "One short sentence."}})

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "One short sentence.", chunks[0].Text)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, "doc-1", chunks[0].DocumentID)
	assert.NotEmpty(t, chunks[0].ID)
	assert.NotEmpty(t, chunks[0].Checksum)
}

func TestChunk_SequentialIndicesAndMonotonicRanges(t *testing.T) {
	c := newTestChunker(30, 7)

	chunks := c.Chunk("doc-1", []domain.Page{{Number: 1, Text: manySentences(40)}})
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, ch.CharStart+len(ch.Text), ch.CharEnd)
		if i > 0 {
			assert.GreaterOrEqual(t, ch.CharStart, chunks[i-1].CharStart,
				"char ranges must be monotonically non-decreasing")
		}
	}
}

func TestChunk_OverlapCarriedForward(t *testing.T) {
	// Each generated sentence is 8 words, so an 8-token budget carries
	// exactly one trailing sentence into the next chunk.
	c := newTestChunker(30, 8)

	chunks := c.Chunk("doc-1", []domain.Page{{Number: 1, Text: manySentences(40)}})
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevSentences := splitSentences(chunks[i-1].Text)
		lastPrev := prevSentences[len(prevSentences)-1]
		assert.True(t, strings.HasPrefix(chunks[i].Text, lastPrev),
			"chunk %d should start with the trailing sentence of chunk %d", i, i-1)
	}
}

func TestChunk_OversizedFirstSentenceAdmitted(t *testing.T) {
	c := newTestChunker(5, 0)
	long := strings.Repeat("word ", 50) + "end."

	chunks := c.Chunk("doc-1", []domain.Page{{Number: 1, Text: long}})

	// A single sentence larger than the target still produces a chunk.
	require.Len(t, chunks, 1)
	assert.Greater(t, chunks[0].TokenCount, 5)
}

func TestChunk_PageResolution(t *testing.T) {
	c := newTestChunker(8, 0)
	pages := []domain.Page{
		{Number: 1, Text: "First page sentence one here now. "},
		{Number: 2, Text: "Second page sentence two here now. "},
		{Number: 3, Text: "Third page sentence three here now."},
	}

	chunks := c.Chunk("doc-1", pages)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 3, chunks[2].Page)
}

func TestChunk_IdempotentChecksums(t *testing.T) {
	c := newTestChunker(30, 7)
	pages := []domain.Page{{Number: 1, Text: manySentences(25)}}

	first := c.Chunk("doc-1", pages)
	second := c.Chunk("doc-2", pages)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Checksum, second[i].Checksum,
			"re-chunking identical input must yield identical checksums")
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic",
			text: "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "no terminator",
			text: "a fragment without punctuation",
			want: []string{"a fragment without punctuation"},
		},
		{
			name: "terminator without space keeps going",
			text: "Version 1.2 is out. Done.",
			want: []string{"Version 1.2 is out.", "Done."},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestFindPage_Fallback(t *testing.T) {
	boundaries := []pageBoundary{{start: 0, end: 10, page: 1}, {start: 10, end: 20, page: 2}}

	assert.Equal(t, 1, findPage(5, boundaries))
	assert.Equal(t, 2, findPage(10, boundaries))
	// Past the end falls back to the last page.
	assert.Equal(t, 2, findPage(99, boundaries))
	assert.Equal(t, 0, findPage(0, nil))
}
