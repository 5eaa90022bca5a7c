package cli

import (
	"context"
	"fmt"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driving"
)

// fakeSearchService returns a scripted outcome for both channels.
type fakeSearchService struct {
	outcome domain.SearchOutcome
	err     error

	lastQuery     string
	lastWorkspace string
	lastOpts      domain.SearchOptions
	hybridCalls   int
	semanticCalls int
}

func (f *fakeSearchService) SemanticSearch(_ context.Context, query, workspaceID string, opts domain.SearchOptions) (domain.SearchOutcome, error) {
	f.semanticCalls++
	f.lastQuery, f.lastWorkspace, f.lastOpts = query, workspaceID, opts
	return f.outcome, f.err
}

func (f *fakeSearchService) HybridSearch(_ context.Context, query, workspaceID string, opts domain.SearchOptions) (domain.SearchOutcome, error) {
	f.hybridCalls++
	f.lastQuery, f.lastWorkspace, f.lastOpts = query, workspaceID, opts
	return f.outcome, f.err
}

// fakeAskService replays a scripted event stream.
type fakeAskService struct {
	events  []domain.PipelineEvent
	askErr  error
	history []domain.ChatLogRecord

	lastQuestion string
	lastOpts     domain.AskOptions
	cleared      bool
}

func (f *fakeAskService) Ask(_ context.Context, question, _ string, opts domain.AskOptions) (<-chan domain.PipelineEvent, error) {
	f.lastQuestion, f.lastOpts = question, opts
	if f.askErr != nil {
		return nil, f.askErr
	}
	ch := make(chan domain.PipelineEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (f *fakeAskService) History(_ context.Context, _ string, limit int) ([]domain.ChatLogRecord, error) {
	if limit > 0 && len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeAskService) ClearHistory(_ context.Context, _ string) (int, error) {
	f.cleared = true
	n := len(f.history)
	f.history = nil
	return n, nil
}

// fakeIngestService records requests and returns scripted results.
type fakeIngestService struct {
	result  *driving.IngestResult
	err     error
	removed []string

	requests []driving.IngestRequest
}

func (f *fakeIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &driving.IngestResult{DocumentID: "doc-1", Chunks: 3}, nil
}

func (f *fakeIngestService) Remove(_ context.Context, _, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, documentID)
	return nil
}

// fakeConfigStore is a map-backed driven.ConfigStore.
type fakeConfigStore struct {
	values map[string]any
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{values: make(map[string]any)}
}

func (f *fakeConfigStore) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeConfigStore) GetString(key string) string {
	if s, ok := f.values[key].(string); ok {
		return s
	}
	return ""
}

func (f *fakeConfigStore) GetInt(key string) int {
	if n, ok := f.values[key].(int); ok {
		return n
	}
	return 0
}

func (f *fakeConfigStore) GetBool(key string) bool {
	if b, ok := f.values[key].(bool); ok {
		return b
	}
	return false
}

func (f *fakeConfigStore) GetStringSlice(key string) []string {
	if s, ok := f.values[key].([]string); ok {
		return s
	}
	return nil
}

func (f *fakeConfigStore) Set(key string, value any) error {
	f.values[key] = value
	return nil
}

func (f *fakeConfigStore) Save() error { return nil }
func (f *fakeConfigStore) Load() error { return nil }
func (f *fakeConfigStore) Path() string {
	return "/tmp/citeview-test/config.toml"
}

// fakeDocumentStore serves docs list/show from a fixed slice.
type fakeDocumentStore struct {
	docs   []domain.Document
	chunks map[string][]domain.Chunk
}

func (f *fakeDocumentStore) SaveDocument(_ context.Context, _ *domain.Document) error { return nil }
func (f *fakeDocumentStore) SaveChunks(_ context.Context, _ []domain.Chunk) error     { return nil }

func (f *fakeDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return f.chunks[documentID], nil
}

func (f *fakeDocumentStore) FindDocuments(_ context.Context, workspaceID string, filter driven.DocumentFilter) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.WorkspaceID != workspaceID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeDocumentStore) DeleteDocument(_ context.Context, _ string) error { return nil }

// fakeVectorStore reports scripted stats.
type fakeVectorStore struct {
	stats []domain.IndexStats
}

func (f *fakeVectorStore) Upsert(_ context.Context, _ string, _ []domain.VectorRecord) error {
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, _ string, _ []float32, _ int, _ driven.QueryFilter) ([]domain.RetrievalResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) DeleteByDocument(_ context.Context, _, _ string) error { return nil }
func (f *fakeVectorStore) DeleteNamespace(_ context.Context, _ string) error     { return nil }
func (f *fakeVectorStore) Stats(_ context.Context) []domain.IndexStats           { return f.stats }
func (f *fakeVectorStore) Close() error                                          { return nil }

// setupTestServices wires fakes into the command tree and returns a
// cleanup that restores the previous wiring and flag state.
func setupTestServices() (Services, func()) {
	previous := services
	wired := Services{
		Search:      &fakeSearchService{},
		Ask:         &fakeAskService{},
		Ingest:      &fakeIngestService{},
		Documents:   &fakeDocumentStore{chunks: map[string][]domain.Chunk{}},
		VectorStore: &fakeVectorStore{},
		Config:      newFakeConfigStore(),
	}
	Configure(wired)
	return wired, func() {
		Configure(previous)
		workspace = ""
		verbose = false
	}
}

// sampleResults builds n distinct search results.
func sampleResults(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{
			ChunkID:    fmt.Sprintf("c%d", i),
			DocumentID: fmt.Sprintf("d%d", i),
			Title:      fmt.Sprintf("Paper %d", i),
			Year:       2020 + i,
			Page:       i + 1,
			Snippet:    fmt.Sprintf("snippet %d", i),
			Score:      1.0 - float64(i)*0.1,
		}
	}
	return out
}
