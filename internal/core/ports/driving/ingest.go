package driving

import (
	"context"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// WorkspaceID is the owning workspace and vector namespace.
	WorkspaceID string

	// Title, Authors, Year, Venue, DOI are bibliographic metadata.
	Title   string
	Authors []string
	Year    int
	Venue   string
	DOI     string

	// Pages is the extracted text, one entry per page.
	Pages []domain.Page
}

// IngestResult reports the outcome of one ingestion.
type IngestResult struct {
	// DocumentID is the stored document, also set for duplicates.
	DocumentID string

	// Chunks is the number of chunks created. Zero for duplicates.
	Chunks int

	// Duplicate is true when an identical document already existed in
	// the workspace. Treated as success, not an error.
	Duplicate bool
}

// IngestService turns extracted text into indexed, embedded chunks.
// Re-running ingestion for the same content is safe: duplicate vector
// IDs overwrite and duplicate documents are detected by content hash.
type IngestService interface {
	// Ingest chunks, embeds, and indexes one document.
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// Remove deletes a document, its chunks, and its vectors.
	Remove(ctx context.Context, workspaceID, documentID string) error
}
