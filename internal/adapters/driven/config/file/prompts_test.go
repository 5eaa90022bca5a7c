package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	store, err := NewPromptStore("")
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".citeview", "prompts"), store.Dir())
}

func TestPromptStore_LoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRAGSystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, "[[CITE:chunk_id]]")

	// First load materialises the default files on disk.
	_, err = os.Stat(filepath.Join(dir, driven.PromptRAGSystem+".txt"))
	assert.NoError(t, err)
}

func TestPromptStore_LoadPrefersUserFile(t *testing.T) {
	dir := t.TempDir()
	custom := "Answer tersely. Question: %s"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptTemplateSummarize+".txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptTemplateSummarize)
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_LoadUnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("no_such_prompt")
	assert.Error(t, err)
}

func TestPromptStore_ReloadPicksUpEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptTemplateReview)
	require.NoError(t, err)

	edited := "Edited review template: %s"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, driven.PromptTemplateReview+".txt"), []byte(edited), 0600))

	// Cached value until reload.
	cached, err := store.Load(driven.PromptTemplateReview)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptTemplateReview)
	require.NoError(t, err)
	assert.Equal(t, edited, fresh)
}

func TestPromptStore_TemplatesKeepPlaceholder(t *testing.T) {
	for _, name := range []string{
		driven.PromptTemplateSummarize,
		driven.PromptTemplateCompare,
		driven.PromptTemplateExtractMethods,
		driven.PromptTemplateReview,
	} {
		assert.True(t, strings.Contains(defaultPrompts[name], "%s"), name)
	}
}
