package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citeview-labs/citeview-cli/internal/citations"
	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// eventBuffer sizes the event channel so token emission does not
// stall on a slow consumer for short bursts.
const eventBuffer = 64

// AskService runs the question-answering pipeline: retrieve, build
// prompt, generate, parse citations, persist.
type AskService struct {
	search      driving.SearchService
	docStore    driven.DocumentStore
	chatLog     driven.ChatLogStore
	llm         driven.LLMService
	prompts     driven.PromptStore
	defaultTemp float64
}

// NewAskService creates a new ask service. The chat log store is
// optional (can be nil); answers then go unaudited.
func NewAskService(
	search driving.SearchService,
	docStore driven.DocumentStore,
	chatLog driven.ChatLogStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *AskService {
	return &AskService{
		search:   search,
		docStore: docStore,
		chatLog:  chatLog,
		llm:      llm,
		prompts:  prompts,
	}
}

// Ask runs the pipeline and streams events. Failures before generation
// starts are returned synchronously; once the channel is live, the
// terminal event is either one error or one done, never both.
func (s *AskService) Ask(
	ctx context.Context, question, workspaceID string, opts domain.AskOptions,
) (<-chan domain.PipelineEvent, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Ask Pipeline")
	logger.Debug("Question: %q (workspace %s)", question, workspaceID)

	// Retrieve context before going asynchronous so retrieval failures
	// surface as plain errors, not stream events.
	retrievalStarted := time.Now()
	outcome, err := s.search.HybridSearch(ctx, question, workspaceID, domain.SearchOptions{
		TopK:      opts.TopK,
		Diversify: opts.Diversify,
	})
	if err != nil {
		return nil, err
	}
	retrievalTime := time.Since(retrievalStarted)
	logger.Debug("Retrieved %d chunks in %s", len(outcome.Results), retrievalTime)

	prompt := buildPrompt(question, outcome.Results, opts.History, opts.Template, s.prompts)

	events := make(chan domain.PipelineEvent, eventBuffer)
	go s.run(ctx, events, runInput{
		question:      question,
		workspaceID:   workspaceID,
		opts:          opts,
		results:       outcome.Results,
		prompt:        prompt,
		retrievalTime: retrievalTime,
	})
	return events, nil
}

// runInput carries the pipeline state into the generation goroutine.
type runInput struct {
	question      string
	workspaceID   string
	opts          domain.AskOptions
	results       []domain.SearchResult
	prompt        string
	retrievalTime time.Duration
}

// run executes generation onward and closes the event channel after
// the terminal event.
func (s *AskService) run(ctx context.Context, events chan<- domain.PipelineEvent, in runInput) {
	defer close(events)

	generationStarted := time.Now()
	var answer strings.Builder

	genOpts := driven.GenerateOptions{
		SystemPrompt: systemPrompt(s.prompts),
		Temperature:  in.opts.Temperature,
	}

	err := s.llm.GenerateStream(ctx, in.prompt, genOpts, func(token string) error {
		answer.WriteString(token)
		select {
		case events <- domain.PipelineEvent{Type: domain.EventToken, Token: token}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		// Generation failed mid-stream: terminal error, no audit record.
		logger.Warn("Generation failed: %v", err)
		emit(ctx, events, domain.PipelineEvent{Type: domain.EventError, Err: err.Error()})
		return
	}
	generationTime := time.Since(generationStarted)

	fullAnswer := answer.String()
	citedIDs := citations.Parse(fullAnswer)

	resolved, err := citations.Resolve(ctx, citedIDs, s.docStore)
	if err != nil {
		// Resolution needs the document store; a failure here degrades
		// to an uncited answer rather than discarding the generation.
		logger.Warn("Citation resolution failed: %v", err)
		resolved = nil
	}
	if len(resolved) > 0 {
		emit(ctx, events, domain.PipelineEvent{Type: domain.EventCitations, Citations: resolved})
	}

	// Persist the audit record unless the caller has given up.
	if ctx.Err() == nil && s.chatLog != nil {
		s.persist(ctx, in, fullAnswer, citedIDs, resolved, generationTime)
	}

	emit(ctx, events, domain.PipelineEvent{
		Type:   domain.EventDone,
		Answer: fullAnswer,
		Summary: &domain.AskSummary{
			RetrievalTime:  in.retrievalTime,
			GenerationTime: generationTime,
			ChunksUsed:     len(in.results),
			CitationCount:  len(resolved),
			Provider:       s.llm.Name(),
		},
	})
}

// emit sends an event unless the consumer has cancelled. Without the
// guard a departed consumer with a full buffer would wedge the
// pipeline goroutine forever.
func emit(ctx context.Context, events chan<- domain.PipelineEvent, ev domain.PipelineEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// persist appends the immutable audit record. A storage failure is
// logged, not surfaced: the user already has the answer.
func (s *AskService) persist(
	ctx context.Context,
	in runInput,
	answer string,
	citedIDs []string,
	resolved []domain.Citation,
	generationTime time.Duration,
) {
	usedIDs := make([]string, len(in.results))
	for i, r := range in.results {
		usedIDs[i] = r.ChunkID
	}

	template := in.opts.Template
	if template == "" {
		template = "default"
	}

	record := &domain.ChatLogRecord{
		ID:            uuid.NewString(),
		WorkspaceID:   in.workspaceID,
		Question:      in.question,
		Answer:        answer,
		Template:      template,
		Provider:      s.llm.Name(),
		UsedChunkIDs:  usedIDs,
		CitedChunkIDs: citedIDs,
		Citations:     resolved,
		Trace: domain.RetrievalTrace{
			RetrievalTime:   in.retrievalTime,
			GenerationTime:  generationTime,
			ChunksRetrieved: len(in.results),
			ChunksCited:     len(citedIDs),
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.chatLog.Append(ctx, record); err != nil {
		logger.Warn("Appending chat log failed: %v", err)
	}
}

// History returns recent Q&A audit records for a workspace.
func (s *AskService) History(ctx context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error) {
	if s.chatLog == nil {
		return nil, nil
	}
	return s.chatLog.List(ctx, workspaceID, limit)
}

// ClearHistory removes all audit records for a workspace.
func (s *AskService) ClearHistory(ctx context.Context, workspaceID string) (int, error) {
	if s.chatLog == nil {
		return 0, nil
	}
	return s.chatLog.Clear(ctx, workspaceID)
}
