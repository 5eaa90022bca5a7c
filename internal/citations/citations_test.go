package citations

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/storage/memory"
	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "order preserved, duplicates kept",
			text: "fact [[CITE:a1]] more [[CITE:b2]] again [[CITE:a1]]",
			want: []string{"a1", "b2", "a1"},
		},
		{
			name: "no markers",
			text: "plain text with [brackets] but no markers",
			want: nil,
		},
		{
			name: "uuid style ids",
			text: "x [[CITE:3f2a9c1e-77b4-4f0e-9a21-0c8d4e5f6a7b]] y",
			want: []string{"3f2a9c1e-77b4-4f0e-9a21-0c8d4e5f6a7b"},
		},
		{
			name: "malformed markers ignored",
			text: "[[CITE:]] [[CITE:ok]] [[cite:no]]",
			want: []string{"ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func seedStore(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{
		ID:          "doc-1",
		WorkspaceID: "ws-1",
		Title:       "Attention Is All You Need",
		Authors:     []string{"Vaswani", "Shazeer"},
		Year:        2017,
		DOI:         "10.0000/example",
		Status:      domain.StatusReady,
	}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "a1", DocumentID: "doc-1", Index: 0, Page: 3, Text: strings.Repeat("t", 300)},
	}))
	return store
}

func TestResolve_DropsDanglingIDs(t *testing.T) {
	store := seedStore(t)

	resolved, err := Resolve(context.Background(), []string{"a1", "zz9"}, store)

	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "a1", resolved[0].ChunkID)
	assert.Equal(t, "doc-1", resolved[0].DocumentID)
	assert.Equal(t, "Attention Is All You Need", resolved[0].Title)
	assert.Equal(t, 2017, resolved[0].Year)
	assert.Equal(t, 3, resolved[0].Page)
	assert.Len(t, resolved[0].Snippet, SnippetLength)
}

func TestResolve_UniqueFirstSeenOrder(t *testing.T) {
	store := seedStore(t)
	require.NoError(t, store.SaveChunks(context.Background(), []domain.Chunk{
		{ID: "a1", DocumentID: "doc-1", Index: 0, Text: "first"},
		{ID: "b2", DocumentID: "doc-1", Index: 1, Text: "second"},
	}))

	resolved, err := Resolve(context.Background(), []string{"b2", "a1", "b2", "a1"}, store)

	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "b2", resolved[0].ChunkID)
	assert.Equal(t, "a1", resolved[1].ChunkID)
}

func TestResolve_Empty(t *testing.T) {
	resolved, err := Resolve(context.Background(), nil, memory.NewDocumentStore())
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestReplaceWithNumbers(t *testing.T) {
	text := "A [[CITE:a1]] B [[CITE:b2]] C [[CITE:a1]] D [[CITE:gone]]"
	numbering := map[string]int{"a1": 1, "b2": 2}

	got := ReplaceWithNumbers(text, numbering)

	assert.Equal(t, "A [1] B [2] C [1] D [?]", got)
}

func TestNumbering(t *testing.T) {
	resolved := []domain.Citation{{ChunkID: "b2"}, {ChunkID: "a1"}}

	numbering := Numbering(resolved)

	assert.Equal(t, map[string]int{"b2": 1, "a1": 2}, numbering)
}
