package domain

// Citation is resolved provenance for a cited fact. Citations are
// derived from markers in generated text and are never persisted
// standalone; they are embedded in the chat log record.
type Citation struct {
	// ChunkID is the cited chunk.
	ChunkID string `json:"chunk_id"`

	// DocumentID is the owning document.
	DocumentID string `json:"document_id"`

	// Title is the document title.
	Title string `json:"title"`

	// Authors lists the document authors.
	Authors []string `json:"authors"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty"`

	// DOI is the digital object identifier.
	DOI string `json:"doi,omitempty"`

	// Page is the page the cited chunk starts on.
	Page int `json:"page,omitempty"`

	// Snippet is a bounded prefix of the cited chunk text.
	Snippet string `json:"snippet"`
}
