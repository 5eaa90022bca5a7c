package domain

// VectorRecord is the embedding of one chunk, as stored in a vector
// store namespace. The record ID equals the chunk ID, so re-upserting
// the same chunk overwrites in place and ingestion stays idempotent.
type VectorRecord struct {
	// ID is the chunk ID.
	ID string

	// Values is the fixed-dimension embedding vector.
	Values []float32

	// Metadata carries retrieval-time context (document_id, chunk_index,
	// page, title, year, text_preview). Values are limited to strings,
	// numbers, and bools so both backends can serialise them.
	Metadata map[string]any
}

// RetrievalResult is a scored candidate returned by a vector store
// query. It is ephemeral, produced per query.
type RetrievalResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the similarity score, higher is more relevant.
	Score float64

	// Metadata is the stored record metadata, if requested.
	Metadata map[string]any
}

// DocumentID returns the owning document recorded in the result
// metadata, falling back to the chunk ID when absent.
func (r RetrievalResult) DocumentID() string {
	if id, ok := r.Metadata["document_id"].(string); ok && id != "" {
		return id
	}
	return r.ChunkID
}

// IndexStats reports vector store state per backend.
type IndexStats struct {
	// Backend is the reporting backend name ("pinecone", "flat").
	Backend string

	// Available is false when the backend is unconfigured or unreachable.
	Available bool

	// VectorCounts maps namespace to stored vector count.
	// Nil when the backend cannot report per-namespace counts.
	VectorCounts map[string]int
}
