package domain

import "time"

// EventType discriminates pipeline events.
type EventType string

// Pipeline event types.
const (
	// EventToken carries one generated text fragment.
	EventToken EventType = "token"

	// EventCitations carries the resolved citations for the answer.
	// Emitted at most once, always before EventDone.
	EventCitations EventType = "citations"

	// EventError is terminal and mutually exclusive with EventDone.
	EventError EventType = "error"

	// EventDone is terminal and carries the full answer plus summary
	// metadata.
	EventDone EventType = "done"
)

// PipelineEvent is one unit of the streaming answer protocol. Events
// are ordered within one request: zero or more token events, an
// optional citations event, then exactly one terminal error or done.
type PipelineEvent struct {
	// Type discriminates which payload fields are set.
	Type EventType `json:"type"`

	// Token is the text fragment for EventToken.
	Token string `json:"token,omitempty"`

	// Citations is the resolved citation list for EventCitations.
	Citations []Citation `json:"citations,omitempty"`

	// Err is the failure description for EventError.
	Err string `json:"error,omitempty"`

	// Answer is the full response text for EventDone.
	Answer string `json:"full_response,omitempty"`

	// Summary is the request summary for EventDone.
	Summary *AskSummary `json:"metadata,omitempty"`
}

// AskSummary is the metadata attached to the terminal done event.
type AskSummary struct {
	// RetrievalTime is how long retrieval took.
	RetrievalTime time.Duration `json:"retrieval_time"`

	// GenerationTime is how long generation took.
	GenerationTime time.Duration `json:"generation_time"`

	// ChunksUsed is the number of context chunks in the prompt.
	ChunksUsed int `json:"chunks_used"`

	// CitationCount is the number of resolved citations.
	CitationCount int `json:"citations_count"`

	// Provider is the LLM provider that produced the answer.
	Provider string `json:"provider"`
}

// ChatMessage is a single turn of prior conversation.
type ChatMessage struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// AskOptions configures one pipeline run.
type AskOptions struct {
	// TopK is the number of context chunks to retrieve.
	TopK int

	// Diversify enables MMR reranking of retrieved chunks.
	Diversify bool

	// Template names the task template (default, summarize, compare,
	// extract_methods, review).
	Template string

	// Provider is the preferred LLM provider name. The factory falls
	// back to the next healthy provider when unavailable.
	Provider string

	// Temperature controls generation randomness.
	Temperature float64

	// History is the prior conversation; only the most recent turns
	// are included in the prompt.
	History []ChatMessage
}

// RetrievalTrace records per-request retrieval counters for the audit
// record.
type RetrievalTrace struct {
	// RetrievalTime is how long retrieval took.
	RetrievalTime time.Duration `json:"retrieval_time"`

	// GenerationTime is how long generation took.
	GenerationTime time.Duration `json:"generation_time"`

	// ChunksRetrieved is the number of chunks placed in the prompt.
	ChunksRetrieved int `json:"chunks_retrieved"`

	// ChunksCited is the number of raw citation markers in the answer,
	// duplicates included. May exceed the resolved citation count.
	ChunksCited int `json:"chunks_cited"`
}

// ChatLogRecord is the immutable audit record of one Q&A exchange.
// It is created once when the pipeline reaches PERSIST and never
// mutated afterwards.
type ChatLogRecord struct {
	// ID is the unique record identifier.
	ID string

	// WorkspaceID is the workspace the question was asked in.
	WorkspaceID string

	// Question is the user's question verbatim.
	Question string

	// Answer is the full generated response, markers included.
	Answer string

	// Template is the task template used.
	Template string

	// Provider is the LLM provider that produced the answer.
	Provider string

	// UsedChunkIDs lists every chunk placed in the prompt context.
	UsedChunkIDs []string

	// CitedChunkIDs lists the raw parsed markers in order of
	// appearance, duplicates retained.
	CitedChunkIDs []string

	// Citations is the resolved citation list. May be shorter than
	// CitedChunkIDs when cited chunks no longer exist.
	Citations []Citation

	// Trace records retrieval and generation counters.
	Trace RetrievalTrace

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}
