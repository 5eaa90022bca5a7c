package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string

	// Dimensions is the embedding vector size. Must match the vector
	// store configuration.
	Dimensions int

	// CacheSize bounds the query embedding cache. Zero disables
	// caching.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the preferred LLM provider. When unreachable the
	// factory falls back to the other provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings holds vector store configuration.
type VectorStoreSettings struct {
	// PineconeAPIKey enables the networked primary backend when set.
	PineconeAPIKey string

	// PineconeHost is the data-plane host of the Pinecone index.
	PineconeHost string

	// DataDir is where the local fallback index persists namespaces.
	// Empty means the default data directory.
	DataDir string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// PrimaryConfigured returns true if the networked backend is set up.
func (v VectorStoreSettings) PrimaryConfigured() bool {
	return v.PineconeAPIKey != "" && v.PineconeHost != ""
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// TargetTokens is the soft upper bound on chunk size.
	TargetTokens int

	// OverlapTokens bounds the sentence overlap carried into the next
	// chunk.
	OverlapTokens int
}
