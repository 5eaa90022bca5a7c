// Package ai provides factory functions for creating AI service
// adapters, including the provider fallback chain for generation.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/citeview-labs/citeview-cli/internal/adapters/driven/embedding/cache"
	geminiembed "github.com/citeview-labs/citeview-cli/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/citeview-labs/citeview-cli/internal/adapters/driven/embedding/ollama"
	geminillm "github.com/citeview-labs/citeview-cli/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/citeview-labs/citeview-cli/internal/adapters/driven/llm/ollama"
	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service,
// validates connectivity and wraps it with the query cache. Returns
// (nil, nil) when no provider is configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'citeview config init' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'citeview config init' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if settings.CacheSize > 0 {
		return cache.NewEmbeddingService(svc, settings.CacheSize), nil
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service
// based on settings. Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(geminiembed.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService builds the generation provider chain: the preferred
// provider first, then each remaining configurable provider as a
// fallback. Callers get one LLMService whose health decides routing at
// generation time. Returns (nil, nil) when nothing is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	providers, err := buildProviders(settings)
	if err != nil {
		return nil, err
	}
	if len(providers) == 1 {
		return providers[0], nil
	}
	return NewFallbackLLM(providers...), nil
}

// buildProviders instantiates every configurable provider, preferred
// first.
func buildProviders(settings *domain.LLMSettings) ([]driven.LLMService, error) {
	var providers []driven.LLMService

	addOllama := func(model string) {
		providers = append(providers, ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   model,
		}))
	}
	addGemini := func(model string) error {
		svc, err := geminillm.NewLLMService(geminillm.LLMConfig{
			APIKey: settings.APIKey,
			Model:  model,
		})
		if err != nil {
			return err
		}
		providers = append(providers, svc)
		return nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		addOllama(settings.Model)
		// Gemini backs up the local provider only when a key exists.
		if settings.APIKey != "" {
			if err := addGemini(""); err != nil {
				return nil, err
			}
		}

	case domain.AIProviderGemini:
		if err := addGemini(settings.Model); err != nil {
			return nil, err
		}
		addOllama("")

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}

	return providers, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by
// creating a service and pinging it. Intended for 'config init' to
// validate credentials on entry.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating the
// preferred provider and checking its health.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if !svc.CheckHealth(ctx) {
		return fmt.Errorf("%w: no provider reachable", domain.ErrLLMUnavailable)
	}
	logger.Debug("LLM provider %s (%s) healthy", svc.Name(), svc.ModelName())
	return nil
}
