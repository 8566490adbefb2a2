package llm

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
)

type stubProvider struct {
	name   string
	prefix string
}

func (p *stubProvider) Complete(context.Context, *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
	return &domainllm.CompletionResponse{}, nil
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) SupportsModel(model string) bool {
	return len(model) >= len(p.prefix) && model[:len(p.prefix)] == p.prefix
}

func TestRouteFirstMatch(t *testing.T) {
	first := &stubProvider{name: "first", prefix: "shared-"}
	second := &stubProvider{name: "second", prefix: "shared-"}
	registry := NewRegistry(first, second)

	p, err := registry.Route("shared-model")
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if p.Name() != "first" {
		t.Errorf("Route() picked %q, want %q", p.Name(), "first")
	}
}

func TestRouteNoProvider(t *testing.T) {
	registry := NewRegistry(&stubProvider{name: "a", prefix: "a-"})

	if _, err := registry.Route("b-model"); err == nil {
		t.Fatal("Route() error = nil, want no-provider error")
	}
}

func TestSetupProvidersFailsFastOnUnroutableDefault(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := &config.Config{DefaultModel: "claude-haiku-4-5-20251001"}

	// Without an API key only the lorem provider registers, so a claude
	// default model has no route.
	if _, err := SetupProviders(cfg, logger); err == nil {
		t.Fatal("SetupProviders() error = nil, want unroutable default model")
	}

	cfg.DefaultModel = "lorem-test"
	registry, err := SetupProviders(cfg, logger)
	if err != nil {
		t.Fatalf("SetupProviders() error = %v", err)
	}
	if _, err := registry.Route("lorem-test"); err != nil {
		t.Errorf("Route(lorem-test) error = %v", err)
	}
}
