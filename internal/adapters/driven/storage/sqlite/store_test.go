package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

// newTestStore creates a store backed by a temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(id, workspaceID string) *domain.Document {
	return &domain.Document{
		ID:          id,
		WorkspaceID: workspaceID,
		Title:       "Attention Is All You Need",
		Authors:     []string{"Vaswani", "Shazeer"},
		Year:        2017,
		Venue:       "NeurIPS",
		DOI:         "10.5555/3295222",
		ContentHash: "hash-" + id,
		Status:      domain.StatusReady,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc1", "ws1")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", got.Title)
	assert.Equal(t, []string{"Vaswani", "Shazeer"}, got.Authors)
	assert.Equal(t, 2017, got.Year)
	assert.Equal(t, domain.StatusReady, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_SaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc1", "ws1")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	doc.Status = domain.StatusFailed
	doc.Title = "Updated"
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

func TestDocumentStore_SaveChunksIdempotent(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "first chunk", Page: 1},
		{ID: "c2", DocumentID: "doc1", Index: 1, Text: "second chunk", Page: 2},
	}
	require.NoError(t, docs.SaveChunks(ctx, chunks))
	require.NoError(t, docs.SaveChunks(ctx, chunks))

	got, err := docs.GetChunks(ctx, "doc1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
}

func TestDocumentStore_GetChunk(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "the text", Page: 3, CharStart: 10, CharEnd: 18, TokenCount: 2},
	}))

	chunk, err := docs.GetChunk(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "the text", chunk.Text)
	assert.Equal(t, 3, chunk.Page)
	assert.Equal(t, 10, chunk.CharStart)

	_, err = docs.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_FindDocuments(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	a := testDocument("a", "ws1")
	a.Year = 2015
	b := testDocument("b", "ws1")
	b.Year = 2020
	b.Status = domain.StatusPending
	c := testDocument("c", "ws2")
	for _, doc := range []*domain.Document{a, b, c} {
		require.NoError(t, docs.SaveDocument(ctx, doc))
	}

	t.Run("workspace isolation", func(t *testing.T) {
		got, err := docs.FindDocuments(ctx, "ws1", driven.DocumentFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("status filter", func(t *testing.T) {
		got, err := docs.FindDocuments(ctx, "ws1", driven.DocumentFilter{Status: domain.StatusPending})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})

	t.Run("content hash filter", func(t *testing.T) {
		got, err := docs.FindDocuments(ctx, "ws1", driven.DocumentFilter{ContentHash: "hash-a"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	t.Run("year range", func(t *testing.T) {
		got, err := docs.FindDocuments(ctx, "ws1", driven.DocumentFilter{YearFrom: 2016, YearTo: 2021})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].ID)
	})
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "text"},
	}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc1"))

	_, err := docs.GetChunk(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatLogStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	logs := store.ChatLogStore()
	ctx := context.Background()

	for i, q := range []string{"first?", "second?", "third?"} {
		rec := &domain.ChatLogRecord{
			ID:            string(rune('a' + i)),
			WorkspaceID:   "ws1",
			Question:      q,
			Answer:        "answer [[CITE:c1]]",
			Template:      "default",
			Provider:      "ollama",
			UsedChunkIDs:  []string{"c1", "c2"},
			CitedChunkIDs: []string{"c1"},
			Citations:     []domain.Citation{{ChunkID: "c1", Title: "Paper"}},
			Trace:         domain.RetrievalTrace{ChunksRetrieved: 2, ChunksCited: 1},
			CreatedAt:     time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
		}
		require.NoError(t, logs.Append(ctx, rec))
	}

	t.Run("chronological order", func(t *testing.T) {
		got, err := logs.List(ctx, "ws1", 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "first?", got[0].Question)
		assert.Equal(t, "third?", got[2].Question)
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		got, err := logs.List(ctx, "ws1", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "second?", got[0].Question)
		assert.Equal(t, "third?", got[1].Question)
	})

	t.Run("round-trips nested fields", func(t *testing.T) {
		got, err := logs.List(ctx, "ws1", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"c1", "c2"}, got[0].UsedChunkIDs)
		require.Len(t, got[0].Citations, 1)
		assert.Equal(t, "Paper", got[0].Citations[0].Title)
		assert.Equal(t, 2, got[0].Trace.ChunksRetrieved)
	})
}

func TestChatLogStore_Clear(t *testing.T) {
	store := newTestStore(t)
	logs := store.ChatLogStore()
	ctx := context.Background()

	require.NoError(t, logs.Append(ctx, &domain.ChatLogRecord{ID: "a", WorkspaceID: "ws1", Question: "q"}))
	require.NoError(t, logs.Append(ctx, &domain.ChatLogRecord{ID: "b", WorkspaceID: "ws1", Question: "q"}))
	require.NoError(t, logs.Append(ctx, &domain.ChatLogRecord{ID: "c", WorkspaceID: "ws2", Question: "q"}))

	n, err := logs.Clear(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := logs.List(ctx, "ws2", 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLexicalSearch_MatchesTerms(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "transformers use self attention mechanisms", Page: 1},
		{ID: "c2", DocumentID: "doc1", Index: 1, Text: "convolutional networks process images", Page: 2},
	}))

	results, err := store.LexicalSearch().Search(ctx, "ws1", "attention", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChunkID)
	assert.Greater(t, results[0].Score, 0.0)
	assert.Equal(t, "doc1", results[0].Metadata["document_id"])
}

func TestLexicalSearch_WorkspaceIsolation(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "retrieval augmented generation"},
	}))

	results, err := store.LexicalSearch().Search(ctx, "other", "retrieval", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalSearch_PunctuationSafe(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc1", "ws1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc1", Index: 0, Text: "quoted text survives"},
	}))

	// Quotes and operators in the query must not break FTS syntax.
	_, err := store.LexicalSearch().Search(ctx, "ws1", `"quoted" AND (text)`, 10)
	assert.NoError(t, err)
}

func TestLexicalSearch_EmptyQuery(t *testing.T) {
	store := newTestStore(t)

	results, err := store.LexicalSearch().Search(context.Background(), "ws1", "   ", 10)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestBuildMatchQuery(t *testing.T) {
	assert.Equal(t, `"hello" OR "world"`, buildMatchQuery("hello world"))
	assert.Equal(t, `"cant"`, buildMatchQuery(`"cant"`))
	assert.Equal(t, "", buildMatchQuery("  "))
}

func TestStore_MigrationIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}
