package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// overfetchFactor widens the raw vector query so deduplication and
// filtering still leave topK results.
const overfetchFactor = 5

// snippetLength bounds result excerpts.
const snippetLength = 200

// SearchService provides semantic and hybrid retrieval.
type SearchService struct {
	docStore         driven.DocumentStore
	vectorStore      driven.VectorStore
	embeddingService driven.EmbeddingService
	lexical          driven.LexicalSearch
}

// NewSearchService creates a new search service. The lexical channel
// is optional (can be nil); hybrid search degrades to semantic-only
// without it.
func NewSearchService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	embeddingService driven.EmbeddingService,
	lexical driven.LexicalSearch,
) *SearchService {
	return &SearchService{
		docStore:         docStore,
		vectorStore:      vectorStore,
		embeddingService: embeddingService,
		lexical:          lexical,
	}
}

// SemanticSearch embeds the query and retrieves the most relevant
// chunks, deduplicated by document and optionally diversified.
func (s *SearchService) SemanticSearch(
	ctx context.Context, query, workspaceID string, opts domain.SearchOptions,
) (domain.SearchOutcome, error) {
	started := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchOutcome{Elapsed: time.Since(started)}, nil
	}
	if s.embeddingService == nil {
		return domain.SearchOutcome{}, domain.ErrEmbeddingUnavailable
	}

	candidates, err := s.semanticCandidates(ctx, query, workspaceID, opts)
	if err != nil {
		return domain.SearchOutcome{}, err
	}

	results, err := s.finalise(ctx, candidates, opts)
	if err != nil {
		return domain.SearchOutcome{}, err
	}

	outcome := domain.SearchOutcome{Results: results, Elapsed: time.Since(started)}
	logger.Debug("Semantic search: %d results in %s", len(results), outcome.Elapsed)
	return outcome, nil
}

// HybridSearch fuses the semantic channel with the lexical keyword
// channel into one ranked list. A lexical failure degrades to
// semantic-only rather than failing the search.
func (s *SearchService) HybridSearch(
	ctx context.Context, query, workspaceID string, opts domain.SearchOptions,
) (domain.SearchOutcome, error) {
	started := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchOutcome{Elapsed: time.Since(started)}, nil
	}
	if s.embeddingService == nil {
		return domain.SearchOutcome{}, domain.ErrEmbeddingUnavailable
	}

	semantic, err := s.semanticCandidates(ctx, query, workspaceID, opts)
	if err != nil {
		return domain.SearchOutcome{}, err
	}

	var lexical []domain.RetrievalResult
	if s.lexical != nil {
		topK := effectiveTopK(opts)
		lexical, err = s.lexical.Search(ctx, workspaceID, query, topK*overfetchFactor)
		if err != nil {
			logger.Warn("Lexical channel failed, degrading to semantic-only: %v", err)
			lexical = nil
		}
	}

	weight := opts.SemanticWeight
	if weight <= 0 || weight > 1 {
		weight = domain.DefaultSemanticWeight
	}
	fused := fuse(semantic, lexical, weight)

	results, err := s.finalise(ctx, fused, opts)
	if err != nil {
		return domain.SearchOutcome{}, err
	}

	outcome := domain.SearchOutcome{Results: results, Elapsed: time.Since(started)}
	logger.Debug("Hybrid search: %d results in %s (semantic weight %.2f)",
		len(results), outcome.Elapsed, weight)
	return outcome, nil
}

// semanticCandidates embeds the query and overfetches raw vector
// matches, MMR-diversified when requested.
func (s *SearchService) semanticCandidates(
	ctx context.Context, query, workspaceID string, opts domain.SearchOptions,
) ([]domain.RetrievalResult, error) {
	vector, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	topK := effectiveTopK(opts)
	candidates, err := s.vectorStore.Query(ctx, workspaceID, vector, topK*overfetchFactor, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	if opts.Diversify {
		candidates = diversify(candidates, topK, domain.DefaultMMRLambda)
	}
	return candidates, nil
}

// fuse merges the two retrieval channels with a weighted sum, keyed by
// (document, chunk). Chunks found by both channels sum their weighted
// scores.
func fuse(semantic, lexical []domain.RetrievalResult, semanticWeight float64) []domain.RetrievalResult {
	type key struct {
		documentID string
		chunkID    string
	}

	merged := make(map[key]domain.RetrievalResult)
	order := make([]key, 0, len(semantic)+len(lexical))

	add := func(r domain.RetrievalResult, weight float64) {
		k := key{documentID: r.DocumentID(), chunkID: r.ChunkID}
		existing, ok := merged[k]
		if !ok {
			r.Score *= weight
			merged[k] = r
			order = append(order, k)
			return
		}
		existing.Score += r.Score * weight
		// Prefer richer metadata when one channel lacks it.
		if existing.Metadata == nil {
			existing.Metadata = r.Metadata
		}
		merged[k] = existing
	}

	for _, r := range semantic {
		add(r, semanticWeight)
	}
	for _, r := range lexical {
		add(r, 1.0-semanticWeight)
	}

	fused := make([]domain.RetrievalResult, 0, len(order))
	for _, k := range order {
		fused = append(fused, merged[k])
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}

// finalise deduplicates candidates by document, applies the year
// filter, truncates to topK, and enriches from the document store.
func (s *SearchService) finalise(
	ctx context.Context, candidates []domain.RetrievalResult, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	topK := effectiveTopK(opts)

	seen := make(map[string]bool)
	results := make([]domain.SearchResult, 0, topK)

	for _, cand := range candidates {
		if len(results) >= topK {
			break
		}

		docID := cand.DocumentID()
		// Candidates arrive ranked, so the first chunk per document is
		// its best one.
		if seen[docID] {
			continue
		}

		result := s.enrich(ctx, cand)

		if opts.YearFrom != 0 && result.Year != 0 && result.Year < opts.YearFrom {
			continue
		}
		if opts.YearTo != 0 && result.Year != 0 && result.Year > opts.YearTo {
			continue
		}

		seen[docID] = true
		results = append(results, result)
	}

	return results, nil
}

// enrich hydrates a raw retrieval hit with chunk text and document
// metadata. Falls back to the vector record metadata when the store no
// longer has the chunk, so a stale index entry still yields a usable
// result.
func (s *SearchService) enrich(ctx context.Context, cand domain.RetrievalResult) domain.SearchResult {
	preview := metaString(cand.Metadata, "text_preview")
	result := domain.SearchResult{
		ChunkID:    cand.ChunkID,
		DocumentID: cand.DocumentID(),
		Score:      cand.Score,
		Title:      metaString(cand.Metadata, "title"),
		Year:       metaInt(cand.Metadata, "year"),
		Page:       metaInt(cand.Metadata, "page"),
		Text:       preview,
		Snippet:    truncate(preview, snippetLength),
	}

	if chunk, err := s.docStore.GetChunk(ctx, cand.ChunkID); err == nil {
		result.DocumentID = chunk.DocumentID
		result.Page = chunk.Page
		result.Text = chunk.Text
		result.Snippet = truncate(chunk.Text, snippetLength)
	}

	if doc, err := s.docStore.GetDocument(ctx, result.DocumentID); err == nil {
		result.Title = doc.Title
		result.Authors = doc.Authors
		result.Year = doc.Year
		result.Venue = doc.Venue
		result.DOI = doc.DOI
	}

	return result
}

// effectiveTopK applies the default result count.
func effectiveTopK(opts domain.SearchOptions) int {
	if opts.TopK > 0 {
		return opts.TopK
	}
	return domain.DefaultTopK
}

// truncate bounds s to limit runes without splitting one.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// metaString reads a string metadata value.
func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaInt reads a numeric metadata value. JSON round-trips numbers as
// float64, so both forms are accepted.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
