package services

import (
	"fmt"
	"strings"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// maxHistoryTurns bounds how many prior messages enter the prompt.
const maxHistoryTurns = 6

// templatePrompts maps template names to prompt store keys. "default"
// and the empty string use the question verbatim.
var templatePrompts = map[string]string{
	"summarize":       driven.PromptTemplateSummarize,
	"compare":         driven.PromptTemplateCompare,
	"extract_methods": driven.PromptTemplateExtractMethods,
	"review":          driven.PromptTemplateReview,
}

// buildPrompt assembles the generation prompt: a context block of
// retrieved chunks, bounded conversation history, and the templated
// question. Each context entry is headed by the chunk id the model
// must copy into citation markers.
func buildPrompt(
	question string,
	results []domain.SearchResult,
	history []domain.ChatMessage,
	template string,
	prompts driven.PromptStore,
) string {
	var b strings.Builder

	b.WriteString("Context:\n\n")
	for _, r := range results {
		header := fmt.Sprintf("[%s | %s", r.ChunkID, orUntitled(r.Title))
		if r.Page > 0 {
			header += fmt.Sprintf(" | p.%d", r.Page)
		}
		header += fmt.Sprintf(" | relevance %.2f]", r.Score)

		b.WriteString(header)
		b.WriteString("\n")
		b.WriteString(contextText(r))
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		start := 0
		if len(history) > maxHistoryTurns {
			start = len(history) - maxHistoryTurns
		}
		for _, msg := range history[start:] {
			role := "User"
			if msg.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(applyTemplate(question, template, prompts))
	b.WriteString("\n")

	return b.String()
}

// applyTemplate frames the question through the named task template.
// Unknown templates fall back to the plain question.
func applyTemplate(question, template string, prompts driven.PromptStore) string {
	if template == "" || template == "default" {
		return question
	}

	key, ok := templatePrompts[template]
	if !ok {
		logger.Warn("Unknown template %q, using the question as-is", template)
		return question
	}

	tmpl, err := prompts.Load(key)
	if err != nil {
		logger.Warn("Loading template %q failed, using the question as-is: %v", template, err)
		return question
	}
	return fmt.Sprintf(tmpl, question)
}

// systemPrompt loads the citation-grounded answering instruction.
func systemPrompt(prompts driven.PromptStore) string {
	prompt, err := prompts.Load(driven.PromptRAGSystem)
	if err != nil {
		logger.Warn("Loading system prompt failed: %v", err)
		return ""
	}
	return prompt
}

// contextText picks the full chunk text for the context block, with
// the display snippet as a last resort for stale index entries.
func contextText(r domain.SearchResult) string {
	if r.Text != "" {
		return r.Text
	}
	return r.Snippet
}

func orUntitled(title string) string {
	if title == "" {
		return "Untitled"
	}
	return title
}
