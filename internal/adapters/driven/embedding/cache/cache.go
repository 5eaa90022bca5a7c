// Package cache wraps an embedding service with a bounded in-memory
// cache keyed by input text. Single-text lookups hit the cache; batch
// calls go straight through, since batches come from ingestion where
// every chunk is new.
package cache

import (
	"context"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultCapacity is the cache entry limit when none is configured.
const DefaultCapacity = 512

// EmbeddingService decorates an inner embedding service with caching.
// Eviction is insertion-order FIFO, not LRU: queries repeat within a
// session far more than they recur across sessions, so the simpler
// policy is enough.
type EmbeddingService struct {
	inner    driven.EmbeddingService
	capacity int

	mu      sync.Mutex
	entries map[string][]float32
	order   []string
}

// NewEmbeddingService wraps inner with a cache of the given capacity.
// A capacity of zero or less uses DefaultCapacity.
func NewEmbeddingService(inner driven.EmbeddingService, capacity int) *EmbeddingService {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EmbeddingService{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string][]float32, capacity),
	}
}

// Embed returns the cached vector for text, or computes and caches it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	if vec, ok := s.entries[text]; ok {
		s.mu.Unlock()
		logger.Debug("Embedding cache hit (%d chars)", len(text))
		return vec, nil
	}
	s.mu.Unlock()

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.store(text, vec)
	return vec, nil
}

// store inserts a vector, evicting the oldest entry at capacity. A
// concurrent insert of the same text wins the race harmlessly: both
// callers computed the same vector.
func (s *EmbeddingService) store(text string, vec []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[text]; ok {
		return
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	s.entries[text] = vec
	s.order = append(s.order, text)
}

// EmbedBatch passes through to the inner service without touching the
// cache.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the inner service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the inner service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the inner service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close releases the inner service and drops the cache.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	s.entries = nil
	s.order = nil
	s.mu.Unlock()
	return s.inner.Close()
}
