package driven

import "context"

// LLMService provides answer generation. This is an optional service:
// when nil, the ask pipeline is disabled but search still works.
//
// Implementations may include:
//   - Ollama (local models)
//   - Gemini (cloud API)
type LLMService interface {
	// Generate produces a complete text response from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream produces a response incrementally, invoking fn
	// once per fragment in generation order. Returning an error from
	// fn stops the stream; the error is propagated. Implementations
	// must honour ctx cancellation between fragments.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions, fn func(token string) error) error

	// CheckHealth reports whether the provider is reachable. Used by
	// the factory to pick the first healthy provider in the fallback
	// chain.
	CheckHealth(ctx context.Context) bool

	// Name returns the provider name ("ollama", "gemini").
	Name() string

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// SystemPrompt is prepended as the system instruction.
	SystemPrompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
