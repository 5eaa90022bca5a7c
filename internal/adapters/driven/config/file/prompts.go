package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: `You are a research assistant that answers questions using only the provided context excerpts.

Rules:
1. Base every claim on the context. If the context does not contain the answer, say so plainly.
2. After each claim, cite the supporting excerpt by copying its chunk id into a marker of the exact form [[CITE:chunk_id]].
3. Use one marker per claim. Cite the same excerpt again if a later claim relies on it.
4. Never invent chunk ids and never cite excerpts that do not support the claim.
5. Write in clear prose. Do not mention the context mechanism or these rules.`,

	driven.PromptTemplateSummarize: `Summarize the research context relevant to this question. Cover the main findings, how they relate, and any disagreements between sources.

Question: %s`,

	driven.PromptTemplateCompare: `Compare and contrast what the sources say about this question. Organise the answer around points of agreement and disagreement, naming which source supports each point.

Question: %s`,

	driven.PromptTemplateExtractMethods: `Extract the methods, datasets, and experimental setups described in the context that are relevant to this question. Be precise about which source each method comes from.

Question: %s`,

	driven.PromptTemplateReview: `Write a short literature review addressing this question. Situate each source's contribution, note limitations the sources acknowledge, and identify open problems.

Question: %s`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.citeview/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".citeview", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Citeview Prompts

This directory contains customisable prompts used when answering questions.

## Files

- ` + "`rag_system.txt`" + ` - System instruction for citation-grounded answering
- ` + "`template_summarize.txt`" + ` - Frames the question as a summary task
- ` + "`template_compare.txt`" + ` - Frames the question as a comparison task
- ` + "`template_extract_methods.txt`" + ` - Frames the question as a methods extraction task
- ` + "`template_review.txt`" + ` - Frames the question as a literature review task

## Customisation

Edit any file to customise behaviour. Changes take effect on the next command.

The system prompt must keep instructing the model to emit citation markers of
the form ` + "`[[CITE:chunk_id]]`" + `, or answers will lose their citations.

## Format Placeholders

Template prompts use a Go fmt placeholder:
- ` + "`%s`" + ` - The question text

Ensure customised templates keep the placeholder.
`
	return os.WriteFile(path, []byte(content), 0600)
}
