package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status DocumentStatus
		want   bool
	}{
		{"pending", StatusPending, true},
		{"processing", StatusProcessing, true},
		{"ready", StatusReady, true},
		{"failed", StatusFailed, true},
		{"empty", DocumentStatus(""), false},
		{"unknown", DocumentStatus("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestRetrievalResult_DocumentID(t *testing.T) {
	t.Run("from metadata", func(t *testing.T) {
		r := RetrievalResult{
			ChunkID:  "chunk-1",
			Metadata: map[string]any{"document_id": "doc-1"},
		}
		assert.Equal(t, "doc-1", r.DocumentID())
	})

	t.Run("falls back to chunk ID", func(t *testing.T) {
		r := RetrievalResult{ChunkID: "chunk-1"}
		assert.Equal(t, "chunk-1", r.DocumentID())

		r.Metadata = map[string]any{"document_id": ""}
		assert.Equal(t, "chunk-1", r.DocumentID())
	})

	t.Run("non-string metadata ignored", func(t *testing.T) {
		r := RetrievalResult{
			ChunkID:  "chunk-1",
			Metadata: map[string]any{"document_id": 42},
		}
		assert.Equal(t, "chunk-1", r.DocumentID())
	})
}
