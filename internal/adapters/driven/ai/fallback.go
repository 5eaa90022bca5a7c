package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// Ensure FallbackLLM implements the interface.
var _ driven.LLMService = (*FallbackLLM)(nil)

// FallbackLLM routes generation to the first healthy provider in
// preference order. Health is checked per call, so a provider that
// comes back up is used again without restarting. The chain remembers
// which provider it last routed to, so Name and ModelName report the
// provider that actually generated, not just the preferred one.
type FallbackLLM struct {
	providers []driven.LLMService

	mu     sync.Mutex
	active driven.LLMService
}

// NewFallbackLLM creates a chain over providers, preferred first.
func NewFallbackLLM(providers ...driven.LLMService) *FallbackLLM {
	return &FallbackLLM{providers: providers}
}

// pick returns the first healthy provider and records it as active.
func (f *FallbackLLM) pick(ctx context.Context) (driven.LLMService, error) {
	for i, p := range f.providers {
		if p.CheckHealth(ctx) {
			if i > 0 {
				logger.Warn("LLM provider %s unavailable, using %s", f.providers[0].Name(), p.Name())
			}
			f.mu.Lock()
			f.active = p
			f.mu.Unlock()
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no provider in the chain is reachable", domain.ErrLLMUnavailable)
}

// Generate routes to the first healthy provider.
func (f *FallbackLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	p, err := f.pick(ctx)
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, prompt, opts)
}

// GenerateStream routes to the first healthy provider.
func (f *FallbackLLM) GenerateStream(
	ctx context.Context, prompt string, opts driven.GenerateOptions, fn func(token string) error,
) error {
	p, err := f.pick(ctx)
	if err != nil {
		return err
	}
	return p.GenerateStream(ctx, prompt, opts, fn)
}

// CheckHealth reports whether any provider is reachable.
func (f *FallbackLLM) CheckHealth(ctx context.Context) bool {
	for _, p := range f.providers {
		if p.CheckHealth(ctx) {
			return true
		}
	}
	return false
}

// Name returns the last-used provider's name, or the preferred one
// before any call has been routed.
func (f *FallbackLLM) Name() string {
	f.mu.Lock()
	active := f.active
	f.mu.Unlock()
	if active != nil {
		return active.Name()
	}
	if len(f.providers) == 0 {
		return "none"
	}
	return f.providers[0].Name()
}

// ModelName returns the last-used provider's model name, or the
// preferred one before any call has been routed.
func (f *FallbackLLM) ModelName() string {
	f.mu.Lock()
	active := f.active
	f.mu.Unlock()
	if active != nil {
		return active.ModelName()
	}
	if len(f.providers) == 0 {
		return ""
	}
	return f.providers[0].ModelName()
}

// Close releases every provider in the chain.
func (f *FallbackLLM) Close() error {
	var firstErr error
	for _, p := range f.providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
