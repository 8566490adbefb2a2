package lorem

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"

	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
)

// Provider is a mock text-completion provider that generates lorem ipsum.
// Used for development and tests without requiring real API keys.
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-test"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// Complete generates a lorem ipsum response sized to the token budget.
func (p *Provider) Complete(ctx context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	// Estimate: 1 token ~ 4 characters
	text := p.generateText(maxTokens * 4)

	return &domainllm.CompletionResponse{
		Text:         text,
		Model:        req.Model,
		InputTokens:  p.estimateTokens(req),
		OutputTokens: len(strings.Fields(text)),
		StopReason:   "end_turn",
	}, nil
}

// generateText generates lorem ipsum text with approximately targetChars characters.
func (p *Provider) generateText(targetChars int) string {
	var sb strings.Builder
	for sb.Len() < targetChars {
		paragraph := p.generator.Paragraph(3, 5)
		sb.WriteString(paragraph)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the input token count using word count as a proxy.
func (p *Provider) estimateTokens(req *domainllm.CompletionRequest) int {
	total := len(strings.Fields(req.System))
	for _, msg := range req.Messages {
		total += len(strings.Fields(msg.Content))
	}
	return total
}
