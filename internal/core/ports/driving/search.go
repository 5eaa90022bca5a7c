package driving

import (
	"context"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// SearchService provides retrieval over a workspace's indexed chunks.
type SearchService interface {
	// SemanticSearch embeds the query and retrieves the most relevant
	// chunks, deduplicated by document and optionally diversified.
	SemanticSearch(ctx context.Context, query, workspaceID string, opts domain.SearchOptions) (domain.SearchOutcome, error)

	// HybridSearch fuses the semantic channel with the lexical keyword
	// channel into one ranked list. Degrades to semantic-only when the
	// lexical channel is unavailable.
	HybridSearch(ctx context.Context, query, workspaceID string, opts domain.SearchOptions) (domain.SearchOutcome, error)
}
