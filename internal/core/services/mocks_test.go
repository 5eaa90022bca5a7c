package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

// fakeDocStore is an in-memory driven.DocumentStore for service tests.
type fakeDocStore struct {
	mu     sync.Mutex
	docs   map[string]*domain.Document
	chunks map[string]*domain.Chunk

	saveDocErr   error
	saveChunkErr error
	findErr      error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:   make(map[string]*domain.Document),
		chunks: make(map[string]*domain.Chunk),
	}
}

func (f *fakeDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if f.saveDocErr != nil {
		return f.saveDocErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if f.saveChunkErr != nil {
		return f.saveChunkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range chunks {
		copied := ch
		f.chunks[ch.ID] = &copied
	}
	return nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *ch
	return &copied, nil
}

func (f *fakeDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chunk
	for _, ch := range f.chunks {
		if ch.DocumentID == documentID {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (f *fakeDocStore) FindDocuments(_ context.Context, workspaceID string, filter driven.DocumentFilter) ([]domain.Document, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.WorkspaceID != workspaceID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.ContentHash != "" && doc.ContentHash != filter.ContentHash {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	for chunkID, ch := range f.chunks {
		if ch.DocumentID == id {
			delete(f.chunks, chunkID)
		}
	}
	return nil
}

// fakeVectorStore is a scripted driven.VectorStore.
type fakeVectorStore struct {
	results  []domain.RetrievalResult
	queryErr error

	upsertNamespace string
	upserted        []domain.VectorRecord
	upsertErr       error

	deletedDocs []string
	deleteErr   error
}

func (f *fakeVectorStore) Upsert(_ context.Context, namespace string, records []domain.VectorRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upsertNamespace = namespace
	f.upserted = append(f.upserted, records...)
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, _ string, _ []float32, topK int, _ driven.QueryFilter) ([]domain.RetrievalResult, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.results) > topK {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func (f *fakeVectorStore) DeleteByDocument(_ context.Context, _, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedDocs = append(f.deletedDocs, documentID)
	return nil
}

func (f *fakeVectorStore) DeleteNamespace(_ context.Context, _ string) error { return nil }

func (f *fakeVectorStore) Stats(_ context.Context) []domain.IndexStats { return nil }

func (f *fakeVectorStore) Close() error { return nil }

// fakeEmbedder is a scripted driven.EmbeddingService returning a fixed
// vector for every text.
type fakeEmbedder struct {
	vector     []float32
	embedErr   error
	embedCalls int
	batchCalls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return len(f.vector) }
func (f *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLexical is a scripted driven.LexicalSearch.
type fakeLexical struct {
	results []domain.RetrievalResult
	err     error
}

func (f *fakeLexical) Search(_ context.Context, _, _ string, limit int) ([]domain.RetrievalResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

// fakeChatLog is an in-memory driven.ChatLogStore.
type fakeChatLog struct {
	mu        sync.Mutex
	records   []domain.ChatLogRecord
	appendErr error
}

func (f *fakeChatLog) Append(_ context.Context, record *domain.ChatLogRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeChatLog) List(_ context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatLogRecord
	for _, r := range f.records {
		if r.WorkspaceID == workspaceID {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeChatLog) Clear(_ context.Context, workspaceID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []domain.ChatLogRecord
	removed := 0
	for _, r := range f.records {
		if r.WorkspaceID == workspaceID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return removed, nil
}

// scriptedLLM emits a fixed token sequence, then optionally fails.
type scriptedLLM struct {
	tokens []string
	genErr error
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var b strings.Builder
	err := s.GenerateStream(ctx, prompt, opts, func(token string) error {
		b.WriteString(token)
		return nil
	})
	return b.String(), err
}

func (s *scriptedLLM) GenerateStream(_ context.Context, _ string, _ driven.GenerateOptions, fn func(string) error) error {
	for _, tok := range s.tokens {
		if err := fn(tok); err != nil {
			return err
		}
	}
	return s.genErr
}

func (s *scriptedLLM) CheckHealth(_ context.Context) bool { return true }
func (s *scriptedLLM) Name() string                       { return "scripted" }
func (s *scriptedLLM) ModelName() string                  { return "scripted-model" }
func (s *scriptedLLM) Close() error                       { return nil }

// fakePrompts is an in-memory driven.PromptStore.
type fakePrompts struct {
	prompts map[string]string
}

func (f *fakePrompts) Load(name string) (string, error) {
	if p, ok := f.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (f *fakePrompts) Reload() {}
