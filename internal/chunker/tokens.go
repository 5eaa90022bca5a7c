package chunker

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens in text. The chunker prefers a subword
// tokenizer; when the encoding cannot be loaded (for example, offline
// on first run) it falls back to whitespace word counting, which makes
// chunk sizes approximate rather than exact.
type TokenCounter interface {
	// Count returns the token length of text.
	Count(text string) int

	// Exact reports whether counts come from a real subword tokenizer.
	Exact() bool
}

var (
	counterOnce    sync.Once
	defaultCounter TokenCounter
)

// DefaultTokenCounter returns the process-wide token counter:
// cl100k_base when available, whitespace fallback otherwise.
func DefaultTokenCounter() TokenCounter {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			defaultCounter = wordCounter{}
			return
		}
		defaultCounter = &encodingCounter{enc: enc}
	})
	return defaultCounter
}

// encodingCounter counts with a tiktoken encoding.
type encodingCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *encodingCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *encodingCounter) Exact() bool { return true }

// wordCounter approximates token counts by whitespace-separated words.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func (wordCounter) Exact() bool { return false }
