package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoText indicates no usable text could be extracted from a
	// source document. The document is marked failed; the error does
	// not propagate across batch boundaries.
	ErrNoText = errors.New("no extractable text")

	// ErrLLMUnavailable indicates no LLM provider is reachable.
	// Answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Retrieval and ingestion are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates neither vector backend is
	// usable. Queries return empty rather than surfacing this to
	// callers; it is reported only by Stats and at startup.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrBackendUnavailable indicates a single vector backend is
	// unconfigured or unreachable. The façade recovers via the other
	// backend; callers never see this from Query.
	ErrBackendUnavailable = errors.New("vector backend unavailable")

	// ErrGenerationFailed indicates the generation capability errored
	// or timed out mid-stream. Surfaced as a terminal error event; the
	// request is aborted and no audit record is written.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrLexicalUnavailable indicates the lexical search channel is
	// missing (no text index). Hybrid fusion degrades to semantic-only.
	ErrLexicalUnavailable = errors.New("lexical search unavailable")
)
