package driven

import (
	"context"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// DocumentFilter narrows FindDocuments results. Zero values disable
// the corresponding predicate.
type DocumentFilter struct {
	// Status filters by ingestion lifecycle state.
	Status domain.DocumentStatus

	// ContentHash filters by extracted-text hash, used for duplicate
	// detection during ingestion.
	ContentHash string

	// YearFrom and YearTo bound the publication year inclusively.
	YearFrom int
	YearTo   int
}

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, replacing any previous
	// chunk set. Safe to call twice with identical input.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// FindDocuments returns documents in a workspace matching the
	// filter.
	FindDocuments(ctx context.Context, workspaceID string, filter DocumentFilter) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}

// ChatLogStore persists immutable Q&A audit records. Records are
// append-only: there is no update operation.
type ChatLogStore interface {
	// Append writes one audit record. The record is never mutated
	// afterwards.
	Append(ctx context.Context, record *domain.ChatLogRecord) error

	// List returns the most recent records for a workspace in
	// chronological order, up to limit.
	List(ctx context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error)

	// Clear removes all records for a workspace and returns the count
	// deleted.
	Clear(ctx context.Context, workspaceID string) (int, error)
}
