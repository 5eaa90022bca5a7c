package domain

import "time"

// DocumentStatus is the ingestion lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending means the document is registered but not yet processed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means chunking/embedding/indexing is in progress.
	StatusProcessing DocumentStatus = "processing"

	// StatusReady means the document is chunked, embedded, and indexed.
	StatusReady DocumentStatus = "ready"

	// StatusFailed means no usable text could be extracted or indexing failed.
	StatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document represents an ingested source item with bibliographic metadata.
// Documents are owned by exactly one workspace, which is also the vector
// store namespace boundary.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// WorkspaceID is the owning workspace and vector store namespace.
	WorkspaceID string

	// Title is the human-readable title.
	Title string

	// Authors lists the document authors in citation order.
	Authors []string

	// Year is the publication year, zero when unknown.
	Year int

	// Venue is the journal or conference name, empty when unknown.
	Venue string

	// DOI is the digital object identifier, empty when unknown.
	DOI string

	// ExternalID links to the upstream registry entry, if any.
	ExternalID string

	// ContentHash is a hash of the extracted full text, used for
	// duplicate detection during ingestion.
	ContentHash string

	// Status is the ingestion lifecycle state.
	Status DocumentStatus

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk represents a contiguous slice of a document's extracted text.
// Chunks are the unit of embedding, retrieval, and citation.
type Chunk struct {
	// ID is the unique identifier for the chunk. The vector record
	// stored for this chunk shares the same ID.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document, starting at 0
	// and strictly increasing.
	Index int

	// Text is the chunk content.
	Text string

	// Page is the page the chunk starts on, zero when unknown.
	Page int

	// CharStart and CharEnd locate the chunk within the document's
	// concatenated text. Ranges are monotonically non-decreasing across
	// a document, overlapping only at intended chunk boundaries.
	CharStart int
	CharEnd   int

	// Checksum is a content hash of Text, used for change detection.
	Checksum string

	// TokenCount is the token length of Text. Approximate when the
	// tokenizer fell back to whitespace counting.
	TokenCount int
}

// Page is one page of extracted text, the chunker's input unit.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}
