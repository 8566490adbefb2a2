// Package annotate implements the annotation engine: it requests proposed
// edits from a text-completion provider, repairs and parses the response,
// and anchors each edit to a byte range of the live document.
package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
	llmsvc "github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm"
)

const (
	analysisMaxTokens = 8192

	// previewLength bounds the response excerpt attached to a
	// MalformedResponseError.
	previewLength = 200
)

const analysisRole = `You are an editorial assistant for plain written English. ` +
	`You review a document and propose specific, minimal edits. ` +
	`Each proposed edit quotes a passage from the document EXACTLY as it appears, ` +
	`including punctuation and capitalization, and offers a replacement.`

// Engine issues analysis and transform requests against the provider
// registry and turns the free-form model output into anchored suggestions.
type Engine struct {
	registry *llmsvc.Registry
	catalog  *Catalog
	model    string
	logger   *slog.Logger
}

// NewEngine creates an annotation engine using the given model.
func NewEngine(registry *llmsvc.Registry, catalog *Catalog, model string, logger *slog.Logger) *Engine {
	return &Engine{
		registry: registry,
		catalog:  catalog,
		model:    model,
		logger:   logger,
	}
}

// rawSuggestion is the wire shape the model is instructed to emit.
type rawSuggestion struct {
	Original    string `json:"original"`
	Replacement string `json:"suggestion"`
	Reason      string `json:"reason"`
	Mode        string `json:"mode"`
}

// Analyze requests suggestions for content restricted to the active
// categories. limit <= 0 asks the model for an exhaustive pass. Elements
// whose original text cannot be found verbatim in content are dropped
// silently; the rest come back in model order with sequential ids and
// first-occurrence anchors. No retries: the first upstream or parse
// failure aborts the call and the caller's state is left untouched.
func (e *Engine) Analyze(ctx context.Context, content string, categories []models.Category, limit int) ([]*models.Suggestion, error) {
	provider, err := e.registry.Route(e.model)
	if err != nil {
		return nil, err
	}

	resp, err := provider.Complete(ctx, &domainllm.CompletionRequest{
		Model:     e.model,
		System:    e.analysisPrompt(categories, limit),
		Messages:  []domainllm.Message{{Role: "user", Content: content}},
		MaxTokens: analysisMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	items, err := parseSuggestionArray(resp.Text)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*models.Suggestion, 0, len(items))
	for _, item := range items {
		if item.Original == "" {
			continue
		}
		// First-occurrence anchoring. When the original text recurs in the
		// document, the suggestion binds to the first occurrence.
		start := strings.Index(content, item.Original)
		if start < 0 {
			e.logger.Debug("suggestion dropped, original text not found",
				"original", bounded(item.Original, 80),
			)
			continue
		}

		suggestions = append(suggestions, &models.Suggestion{
			ID:          len(suggestions) + 1,
			Original:    item.Original,
			Replacement: item.Replacement,
			Reason:      item.Reason,
			Category:    models.NormalizeCategory(item.Mode),
			Start:       start,
			End:         start + len(item.Original),
		})
	}

	e.logger.Info("analysis complete",
		"model", resp.Model,
		"proposed", len(items),
		"anchored", len(suggestions),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)

	return suggestions, nil
}

// analysisPrompt assembles the system prompt: role, active-category
// guidance, count target, and the output contract.
func (e *Engine) analysisPrompt(categories []models.Category, limit int) string {
	var sb strings.Builder
	sb.WriteString(analysisRole)
	sb.WriteString("\n\nFocus areas:\n")
	for _, c := range categories {
		if g := e.catalog.Guidance(c); g != "" {
			fmt.Fprintf(&sb, "- %s: %s\n", c, g)
		}
	}

	if limit > 0 {
		fmt.Fprintf(&sb, "\nPropose up to %d suggestions.", limit)
	} else {
		fmt.Fprintf(&sb, "\nBe exhaustive: propose between %d and %d suggestions, covering the whole document.",
			config.DefaultSuggestionTarget, config.MaxSuggestionTarget)
	}

	sb.WriteString("\n\nRespond with a single JSON array and nothing else. Each element: ")
	sb.WriteString(`{"original": "<exact text from the document>", "suggestion": "<replacement text>", "reason": "<one sentence>", "mode": "<focus area id>"}`)
	return sb.String()
}

// parseSuggestionArray locates the JSON array in free-form model output
// and parses it. The model sometimes wraps the array in prose despite
// instructions, so the array is found by the first '[' and last ']';
// control characters are stripped before parsing because models emit raw
// newlines inside string values.
func parseSuggestionArray(text string) ([]rawSuggestion, error) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end < start {
		return nil, &domain.MalformedResponseError{Preview: bounded(text, previewLength)}
	}

	raw := stripControl(text[start : end+1])

	var items []rawSuggestion
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &domain.MalformedResponseError{
			Preview: bounded(raw, previewLength),
			Cause:   err,
		}
	}
	return items, nil
}

// stripControl removes ASCII control characters (< 0x20). JSON treats
// them as whitespace at best and as syntax errors inside strings.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

// bounded truncates s to at most n bytes for log and error payloads.
func bounded(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
