package domain

import "time"

// Default retrieval parameters.
const (
	// DefaultTopK is the default number of results returned by search.
	DefaultTopK = 8

	// DefaultSemanticWeight is the semantic channel weight in hybrid
	// fusion. The lexical channel receives the complement.
	DefaultSemanticWeight = 0.7

	// DefaultMMRLambda trades relevance against diversity in MMR
	// reranking. 1.0 is pure relevance, 0.0 is pure diversity.
	DefaultMMRLambda = 0.7
)

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// TopK is the maximum number of results (default DefaultTopK).
	TopK int

	// Diversify enables MMR reranking for result diversity.
	Diversify bool

	// YearFrom filters out documents published before this year.
	// Zero disables the bound.
	YearFrom int

	// YearTo filters out documents published after this year.
	// Zero disables the bound.
	YearTo int

	// SemanticWeight is the hybrid fusion weight for the semantic
	// channel (default DefaultSemanticWeight). Only used by HybridSearch.
	SemanticWeight float64
}

// SearchResult is a single retrieval hit, enriched with document
// metadata from the document store.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Title is the document title.
	Title string

	// Authors lists the document authors.
	Authors []string

	// Year is the publication year, zero when unknown.
	Year int

	// Venue is the journal or conference name.
	Venue string

	// DOI is the digital object identifier.
	DOI string

	// Page is the page the chunk starts on.
	Page int

	// Text is the full chunk text, for generation context. Falls back
	// to the indexed preview when the store no longer has the chunk.
	Text string

	// Snippet is a bounded excerpt of the chunk text, for display.
	Snippet string

	// Score is the relevance score. After hybrid fusion this is the
	// weighted combination of both channels.
	Score float64
}

// SearchOutcome pairs a ranked result list with the retrieval latency.
type SearchOutcome struct {
	// Results is the ranked, deduplicated result list.
	Results []SearchResult

	// Elapsed is the wall time the retrieval took.
	Elapsed time.Duration
}
