package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

func historyRecord() domain.ChatLogRecord {
	return domain.ChatLogRecord{
		ID:          "rec-1",
		WorkspaceID: "default",
		Question:    "What did the paper find?",
		Answer:      "It found things [[CITE:c1]] and more [[CITE:c-gone]].",
		Citations: []domain.Citation{{
			ChunkID: "c1",
			Title:   "Findings Paper",
			Year:    2022,
		}},
		CreatedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestHistoryCmd_RendersNumberedMarkers(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.history = []domain.ChatLogRecord{historyRecord()}

	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "What did the paper find?")
	// Resolved markers become numbers, dangling ones a placeholder.
	assert.Contains(t, out, "It found things [1] and more [?].")
	assert.Contains(t, out, "[1] Findings Paper, 2022")
	assert.NotContains(t, out, "[[CITE:")
}

func TestHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No history")
}

func TestHistoryCmd_Clear(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.history = []domain.ChatLogRecord{historyRecord(), historyRecord()}

	out, err := execute(t, "history", "clear")

	require.NoError(t, err)
	assert.True(t, ask.cleared)
	assert.Contains(t, out, "Removed 2 entries")
}

func TestFirstLines(t *testing.T) {
	assert.Equal(t, "short", firstLines("short", 3))
	assert.Equal(t, "a\nb\nc ...", firstLines("a\nb\nc\nd\ne", 3))
	assert.Equal(t, "a\nb", firstLines("a\nb", 3))
}
