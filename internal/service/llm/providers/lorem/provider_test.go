package lorem

import (
	"context"
	"testing"

	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
)

func TestSupportsModel(t *testing.T) {
	p := NewProvider()

	if !p.SupportsModel("lorem-test") {
		t.Error("SupportsModel(lorem-test) = false")
	}
	if p.SupportsModel("claude-haiku-4-5-20251001") {
		t.Error("SupportsModel(claude-*) = true")
	}
}

func TestCompleteGeneratesText(t *testing.T) {
	p := NewProvider()

	resp, err := p.Complete(context.Background(), &domainllm.CompletionRequest{
		Model:     "lorem-test",
		Messages:  []domainllm.Message{{Role: "user", Content: "hello"}},
		MaxTokens: 50,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text == "" {
		t.Error("Text is empty")
	}
	if resp.Model != "lorem-test" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
}

func TestCompleteRejectsUnknownModel(t *testing.T) {
	p := NewProvider()

	_, err := p.Complete(context.Background(), &domainllm.CompletionRequest{Model: "gpt-4"})
	if err == nil {
		t.Fatal("Complete() error = nil, want unsupported model error")
	}
}

func TestCompleteHonorsCancelledContext(t *testing.T) {
	p := NewProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, &domainllm.CompletionRequest{Model: "lorem-test"})
	if err == nil {
		t.Fatal("Complete() error = nil, want context error")
	}
}
