package llm

import (
	"fmt"
	"log/slog"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm/providers/anthropic"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm/providers/lorem"
)

// Registry routes completion requests to the provider that supports the
// requested model.
type Registry struct {
	providers []domainllm.Provider
}

// NewRegistry creates a registry over the given providers. Routing checks
// them in registration order.
func NewRegistry(providers ...domainllm.Provider) *Registry {
	return &Registry{providers: providers}
}

// Route returns the first provider that supports the model.
func (r *Registry) Route(model string) (domainllm.Provider, error) {
	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider supports model %q", model)
}

// SetupProviders initializes the provider registry from config.
// The lorem provider is always registered so dev and tests work without
// API keys; Anthropic is registered when a key is present.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*Registry, error) {
	var providers []domainllm.Provider

	if cfg.AnthropicAPIKey != "" {
		anthropicProvider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("create anthropic provider: %w", err)
		}
		providers = append(providers, anthropicProvider)
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
	}

	providers = append(providers, lorem.NewProvider())
	logger.Info("provider available", "name", "lorem", "models", "lorem-*")

	registry := NewRegistry(providers...)

	// Fail fast when the configured default model has no provider.
	if _, err := registry.Route(cfg.DefaultModel); err != nil {
		return nil, fmt.Errorf("default model not routable: %w", err)
	}

	return registry, nil
}
