package annotate

import (
	"context"
	"fmt"
	"strings"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/utils"
)

const transformMaxTokens = 8192

const transformRole = `You are preparing a manuscript for plain-language publication. ` +
	`Rewrite the text you are given: normalize footnote markers to bracketed numbers, ` +
	`replace jargon with the plain term the document already prefers, and keep the author's meaning and paragraph structure intact. ` +
	`Return only the rewritten text, with paragraphs separated by blank lines. Do not add commentary.`

// Transform rewrites the whole document (footnote normalization plus a
// terminology pass) and returns the replacement text. Documents over the
// segment word budget are chunked on paragraph boundaries and submitted
// sequentially, one request at a time; the first failed segment aborts the
// whole operation with no partial result, so the caller's document is
// untouched unless every segment succeeded. The caller must snapshot the
// prior content into the version ledger before applying the result.
func (e *Engine) Transform(ctx context.Context, content string) (string, error) {
	if utils.CountWords(content) <= config.SegmentWordBudget {
		return e.transformSegment(ctx, content)
	}

	segments := Split(content, config.SegmentWordBudget)
	e.logger.Info("transforming in segments", "segments", len(segments))

	rewritten := make([]string, len(segments))
	for i, segment := range segments {
		out, err := e.transformSegment(ctx, segment)
		if err != nil {
			return "", fmt.Errorf("segment %d of %d: %w", i+1, len(segments), err)
		}
		rewritten[i] = out
	}

	return Join(rewritten), nil
}

func (e *Engine) transformSegment(ctx context.Context, segment string) (string, error) {
	provider, err := e.registry.Route(e.model)
	if err != nil {
		return "", err
	}

	resp, err := provider.Complete(ctx, &domainllm.CompletionRequest{
		Model:     e.model,
		System:    transformRole,
		Messages:  []domainllm.Message{{Role: "user", Content: segment}},
		MaxTokens: transformMaxTokens,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}
