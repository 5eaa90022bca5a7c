package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_StreamsAnswerAndSources(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.events = []domain.PipelineEvent{
		{Type: domain.EventToken, Token: "The answer "},
		{Type: domain.EventToken, Token: "[[CITE:c1]]."},
		{Type: domain.EventCitations, Citations: []domain.Citation{{
			ChunkID: "c1",
			Title:   "Cited Paper",
			Authors: []string{"Doe, J."},
			Year:    2021,
			Page:    4,
		}}},
		{Type: domain.EventDone, Answer: "The answer [[CITE:c1]].", Summary: &domain.AskSummary{
			ChunksUsed:    5,
			CitationCount: 1,
			Provider:      "ollama",
		}},
	}

	out, err := execute(t, "ask", "What is the answer?")

	require.NoError(t, err)
	assert.Contains(t, out, "The answer [[CITE:c1]].")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "[1] Cited Paper, Doe, J., 2021, p.4")
	assert.Equal(t, "What is the answer?", ask.lastQuestion)
}

func TestAskCmd_PassesOptions(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.events = []domain.PipelineEvent{{Type: domain.EventDone, Answer: "ok"}}

	_, err := execute(t, "ask", "question", "--template", "summarize", "--top-k", "4", "--diversify")
	defer func() {
		askTemplate = "default"
		askTopK = domain.DefaultTopK
		askDiversify = false
	}()

	require.NoError(t, err)
	assert.Equal(t, "summarize", ask.lastOpts.Template)
	assert.Equal(t, 4, ask.lastOpts.TopK)
	assert.True(t, ask.lastOpts.Diversify)
}

func TestAskCmd_GenerationError(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.events = []domain.PipelineEvent{
		{Type: domain.EventToken, Token: "partial "},
		{Type: domain.EventError, Err: "model crashed"},
	}

	out, err := execute(t, "ask", "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
	assert.Contains(t, out, "partial ")
}

func TestAskCmd_SynchronousFailure(t *testing.T) {
	wired, cleanup := setupTestServices()
	defer cleanup()
	ask := wired.Ask.(*fakeAskService)
	ask.askErr = errors.New("no documents indexed")

	_, err := execute(t, "ask", "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents indexed")
}

func TestAskCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	Configure(Services{})

	_, err := execute(t, "ask", "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
