package memory

import (
	"context"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

// Ensure ChatLogStore implements the interface.
var _ driven.ChatLogStore = (*ChatLogStore)(nil)

// ChatLogStore is an in-memory implementation of driven.ChatLogStore.
// Records are append-only.
type ChatLogStore struct {
	mu      sync.RWMutex
	records []domain.ChatLogRecord
}

// NewChatLogStore creates a new in-memory chat log store.
func NewChatLogStore() *ChatLogStore {
	return &ChatLogStore{}
}

// Append writes one audit record.
func (s *ChatLogStore) Append(_ context.Context, record *domain.ChatLogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// List returns the most recent records for a workspace in
// chronological order, up to limit.
func (s *ChatLogStore) List(_ context.Context, workspaceID string, limit int) ([]domain.ChatLogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ChatLogRecord
	for _, r := range s.records {
		if r.WorkspaceID == workspaceID {
			result = append(result, r)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

// Clear removes all records for a workspace.
func (s *ChatLogStore) Clear(_ context.Context, workspaceID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	deleted := 0
	for _, r := range s.records {
		if r.WorkspaceID == workspaceID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}
