package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptRAGSystem is the system instruction for citation-grounded
	// answering. It states the citation marker format the generation
	// model must emit. No format placeholders.
	PromptRAGSystem = "rag_system"

	// PromptTemplateSummarize frames the question as a summary task.
	// Expects a %s placeholder for the question.
	PromptTemplateSummarize = "template_summarize"

	// PromptTemplateCompare frames the question as a comparison task.
	// Expects a %s placeholder for the question.
	PromptTemplateCompare = "template_compare"

	// PromptTemplateExtractMethods frames the question as a methods
	// extraction task. Expects a %s placeholder for the question.
	PromptTemplateExtractMethods = "template_extract_methods"

	// PromptTemplateReview frames the question as a literature review
	// task. Expects a %s placeholder for the question.
	PromptTemplateReview = "template_review"
)
