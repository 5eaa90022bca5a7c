package driven

import (
	"context"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// QueryFilter restricts vector queries by stored metadata. A nil
// filter matches everything.
type QueryFilter map[string]any

// VectorBackend is one vector storage backend. Two implementations
// exist: the networked primary (Pinecone) and the local flat fallback.
type VectorBackend interface {
	// Name identifies the backend in logs and stats.
	Name() string

	// Available reports whether the backend is configured and usable.
	// Unavailable backends fail fast on all operations.
	Available(ctx context.Context) bool

	// Upsert writes records into a namespace. Existing IDs are
	// overwritten, which keeps re-ingestion idempotent.
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error

	// Query returns the topK nearest records by similarity, best
	// first, optionally restricted by a metadata filter.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter QueryFilter) ([]domain.RetrievalResult, error)

	// DeleteByDocument removes all vectors belonging to a document.
	DeleteByDocument(ctx context.Context, namespace, documentID string) error

	// DeleteNamespace removes an entire namespace.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Stats reports backend state.
	Stats(ctx context.Context) domain.IndexStats

	// Close releases resources.
	Close() error
}

// VectorStore is the dual-backend façade the core retrieves through.
// It owns mirroring and failover policy: writes go to the primary and
// are mirrored best-effort to the fallback; queries fail over
// transparently. Query never returns an error while at least one
// backend is usable.
type VectorStore interface {
	// Upsert writes records, mirroring to the fallback best-effort.
	Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error

	// Query retrieves the topK most similar records. Returns empty,
	// never an error, when both backends are unusable.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter QueryFilter) ([]domain.RetrievalResult, error)

	// DeleteByDocument removes a document's vectors from both
	// backends independently. Succeeds if at least one backend does.
	DeleteByDocument(ctx context.Context, namespace, documentID string) error

	// DeleteNamespace removes a namespace from both backends.
	DeleteNamespace(ctx context.Context, namespace string) error

	// Stats reports per-backend state.
	Stats(ctx context.Context) []domain.IndexStats

	// Close releases both backends.
	Close() error
}

// LexicalSearch is the keyword retrieval channel used by hybrid
// fusion. Backed by the SQLite FTS index over chunk text.
type LexicalSearch interface {
	// Search returns chunks in a workspace matching the query terms,
	// scored and ranked best first.
	Search(ctx context.Context, workspaceID, query string, limit int) ([]domain.RetrievalResult, error)
}
