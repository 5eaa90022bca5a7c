// Package vector implements the dual-backend vector store façade. The
// primary backend (Pinecone) is authoritative when configured; the
// local flat index mirrors writes and serves queries when the primary
// fails.
package vector

import (
	"context"
	"errors"
	"fmt"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure Store implements the façade interface.
var _ driven.VectorStore = (*Store)(nil)

// Store routes vector operations across a primary and a fallback
// backend. Either may be nil; at least one must be present.
type Store struct {
	primary  driven.VectorBackend
	fallback driven.VectorBackend
}

// NewStore creates the façade. Pass nil for an absent backend.
func NewStore(primary, fallback driven.VectorBackend) (*Store, error) {
	if primary == nil && fallback == nil {
		return nil, fmt.Errorf("%w: no vector backend configured", domain.ErrVectorStoreUnavailable)
	}
	return &Store{primary: primary, fallback: fallback}, nil
}

// Upsert writes to the primary and mirrors to the fallback. A mirror
// failure is logged, never surfaced: the two indexes are eventually
// consistent, with the primary authoritative. When the primary is
// absent, unreachable, or errors, the write degrades to the fallback
// alone so records are never lost while one backend is usable.
func (s *Store) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error {
	if s.primary == nil {
		return s.fallback.Upsert(ctx, namespace, records)
	}
	if s.fallback == nil {
		return s.primary.Upsert(ctx, namespace, records)
	}

	if !s.primary.Available(ctx) {
		logger.Warn("%s unavailable, writing to %s only", s.primary.Name(), s.fallback.Name())
		return s.fallback.Upsert(ctx, namespace, records)
	}

	if err := s.primary.Upsert(ctx, namespace, records); err != nil {
		logger.Warn("Upsert on %s failed, writing to %s only: %v",
			s.primary.Name(), s.fallback.Name(), err)
		return s.fallback.Upsert(ctx, namespace, records)
	}

	if err := s.fallback.Upsert(ctx, namespace, records); err != nil {
		logger.Warn("Mirror upsert to %s failed: %v", s.fallback.Name(), err)
	}
	return nil
}

// Query asks the primary first and fails over to the fallback on
// error. An error is returned only when every present backend fails.
func (s *Store) Query(
	ctx context.Context, namespace string, vec []float32, topK int, filter driven.QueryFilter,
) ([]domain.RetrievalResult, error) {
	var primaryErr error

	if s.primary != nil {
		results, err := s.primary.Query(ctx, namespace, vec, topK, filter)
		if err == nil {
			return results, nil
		}
		primaryErr = err
		if s.fallback != nil {
			logger.Warn("Query on %s failed, falling back to %s: %v",
				s.primary.Name(), s.fallback.Name(), err)
		}
	}

	if s.fallback != nil {
		results, err := s.fallback.Query(ctx, namespace, vec, topK, filter)
		if err == nil {
			return results, nil
		}
		if primaryErr != nil {
			return nil, fmt.Errorf("%w: primary: %v, fallback: %v",
				domain.ErrVectorStoreUnavailable, primaryErr, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, primaryErr)
}

// DeleteByDocument removes the document's vectors from both backends
// independently. Succeeds when at least one backend succeeds, so a
// temporarily unreachable backend does not block removal from the
// other.
func (s *Store) DeleteByDocument(ctx context.Context, namespace, documentID string) error {
	return s.both(func(b driven.VectorBackend) error {
		return b.DeleteByDocument(ctx, namespace, documentID)
	})
}

// DeleteNamespace removes the namespace from both backends
// independently, with the same at-least-one success rule.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	return s.both(func(b driven.VectorBackend) error {
		return b.DeleteNamespace(ctx, namespace)
	})
}

// both runs op against every present backend. It errors only when all
// of them fail.
func (s *Store) both(op func(driven.VectorBackend) error) error {
	var errs []error
	ran := 0

	for _, b := range []driven.VectorBackend{s.primary, s.fallback} {
		if b == nil {
			continue
		}
		ran++
		if err := op(b); err != nil {
			logger.Warn("Vector operation on %s failed: %v", b.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		}
	}

	if len(errs) == ran {
		return errors.Join(errs...)
	}
	return nil
}

// Stats reports each present backend's state, primary first.
func (s *Store) Stats(ctx context.Context) []domain.IndexStats {
	var stats []domain.IndexStats
	for _, b := range []driven.VectorBackend{s.primary, s.fallback} {
		if b != nil {
			stats = append(stats, b.Stats(ctx))
		}
	}
	return stats
}

// Close releases both backends.
func (s *Store) Close() error {
	var errs []error
	for _, b := range []driven.VectorBackend{s.primary, s.fallback} {
		if b != nil {
			if err := b.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
