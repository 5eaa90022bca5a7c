// Package domain defines the core business entities for citeview.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source document with bibliographic metadata
//   - Chunk: A bounded, overlapping slice of a document's text
//   - VectorRecord: The embedding of one chunk, keyed by chunk ID
//   - RetrievalResult: A scored candidate returned by the vector store
//   - Citation: Resolved provenance for a cited fact
//   - PipelineEvent: One unit of the streaming answer protocol
//   - ChatLogRecord: Immutable audit record of one Q&A exchange
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
