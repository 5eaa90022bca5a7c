package file

import (
	"os"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
)

// Configuration keys. The TOML file nests these as [embedding],
// [llm], [vector] and [chunking] tables; the store flattens them to
// dot-notation.
const (
	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingDimensions = "embedding.dimensions"
	KeyEmbeddingCacheSize  = "embedding.cache_size"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMBaseURL  = "llm.base_url"
	KeyLLMAPIKey   = "llm.api_key"

	KeyVectorPineconeHost = "vector.pinecone_host"
	KeyVectorDataDir      = "vector.data_dir"

	KeyChunkingTargetTokens  = "chunking.target_tokens"
	KeyChunkingOverlapTokens = "chunking.overlap_tokens"

	KeyDefaultWorkspace = "workspace.default"
)

// Environment variables override file values for secrets, so API keys
// never have to be written to disk.
const (
	envPineconeAPIKey = "PINECONE_API_KEY"
	envGeminiAPIKey   = "GEMINI_API_KEY"
)

// EmbeddingSettings assembles embedding configuration from the store.
func (s *ConfigStore) EmbeddingSettings() domain.EmbeddingSettings {
	provider := domain.AIProvider(s.GetString(KeyEmbeddingProvider))
	if provider == "" {
		provider = domain.AIProviderOllama
	}

	cacheSize := s.GetInt(KeyEmbeddingCacheSize)
	if cacheSize == 0 {
		cacheSize = 512
	}

	return domain.EmbeddingSettings{
		Provider:   provider,
		Model:      s.GetString(KeyEmbeddingModel),
		BaseURL:    s.GetString(KeyEmbeddingBaseURL),
		APIKey:     secret(envGeminiAPIKey, ""),
		Dimensions: s.GetInt(KeyEmbeddingDimensions),
		CacheSize:  cacheSize,
	}
}

// LLMSettings assembles LLM configuration from the store.
func (s *ConfigStore) LLMSettings() domain.LLMSettings {
	provider := domain.AIProvider(s.GetString(KeyLLMProvider))
	if provider == "" {
		provider = domain.AIProviderOllama
	}

	return domain.LLMSettings{
		Provider: provider,
		Model:    s.GetString(KeyLLMModel),
		BaseURL:  s.GetString(KeyLLMBaseURL),
		APIKey:   secret(envGeminiAPIKey, s.GetString(KeyLLMAPIKey)),
	}
}

// VectorStoreSettings assembles vector store configuration from the
// store.
func (s *ConfigStore) VectorStoreSettings() domain.VectorStoreSettings {
	return domain.VectorStoreSettings{
		PineconeAPIKey: secret(envPineconeAPIKey, ""),
		PineconeHost:   s.GetString(KeyVectorPineconeHost),
		DataDir:        s.GetString(KeyVectorDataDir),
		Dimensions:     s.GetInt(KeyEmbeddingDimensions),
	}
}

// ChunkingSettings assembles chunker configuration from the store.
func (s *ConfigStore) ChunkingSettings() domain.ChunkingSettings {
	return domain.ChunkingSettings{
		TargetTokens:  s.GetInt(KeyChunkingTargetTokens),
		OverlapTokens: s.GetInt(KeyChunkingOverlapTokens),
	}
}

// DefaultWorkspace returns the configured default workspace name.
func (s *ConfigStore) DefaultWorkspace() string {
	if ws := s.GetString(KeyDefaultWorkspace); ws != "" {
		return ws
	}
	return "default"
}

// secret prefers the environment variable, then the file value.
func secret(envVar, fileValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fileValue
}
