package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	domainllm "github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/services/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/annotate"
	llmsvc "github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/store"
)

// fakeProvider delegates to a per-test completion function.
type fakeProvider struct {
	complete func(ctx context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error)
}

func (p *fakeProvider) Complete(ctx context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
	return p.complete(ctx, req)
}

func (p *fakeProvider) Name() string              { return "fake" }
func (p *fakeProvider) SupportsModel(string) bool { return true }

func replyWith(text string) *fakeProvider {
	return &fakeProvider{complete: func(context.Context, *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		return &domainllm.CompletionResponse{Text: text, Model: "fake-test"}, nil
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestService(t *testing.T, provider domainllm.Provider, kv store.KV) *Service {
	t.Helper()
	if kv == nil {
		kv = store.NewMemoryStore()
	}
	logger := discardLogger()
	registry := llmsvc.NewRegistry(provider)
	engine := annotate.NewEngine(registry, annotate.DefaultCatalog(), "fake-test", logger)
	return NewService(kv, store.NewDebouncer(kv, logger), engine, registry, "fake-test", logger)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t, replyWith(""), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "hello world")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Content != "hello world" {
		t.Errorf("Content = %q", got.Content)
	}
	if len(got.Prefs.ActiveCategories) != len(models.AllCategories()) {
		t.Errorf("default preferences missing categories: %v", got.Prefs.ActiveCategories)
	}

	if _, err := svc.Get(ctx, uuid.New()); err == nil {
		t.Error("Get(unknown) error = nil, want NotFoundError")
	}
}

func TestAnalyzeAndAcceptFlow(t *testing.T) {
	provider := replyWith(`[{"original": "utilize", "suggestion": "use", "reason": "plainer word", "mode": "concision"}]`)
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "We utilize the tool daily.")
	if err != nil {
		t.Fatal(err)
	}

	suggestions, err := svc.Analyze(ctx, sess.ID, 10)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("len(suggestions) = %d, want 1", len(suggestions))
	}

	updated, err := svc.AcceptSuggestion(ctx, sess.ID, suggestions[0].ID)
	if err != nil {
		t.Fatalf("AcceptSuggestion() error = %v", err)
	}
	if updated.Content != "We use the tool daily." {
		t.Errorf("Content = %q", updated.Content)
	}
	if len(updated.Suggestions) != 0 {
		t.Errorf("len(Suggestions) = %d, want 0", len(updated.Suggestions))
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	svc := newTestService(t, replyWith("[]"), nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "")
	_, err := svc.Analyze(ctx, sess.ID, 10)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestAnalyzeSingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	provider := &fakeProvider{complete: func(ctx context.Context, _ *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		enteredOnce.Do(func() { close(entered) })
		<-release
		return &domainllm.CompletionResponse{Text: "[]"}, nil
	}}

	svc := newTestService(t, provider, nil)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "some text")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, sess.ID, 10)
		done <- err
	}()

	<-entered
	if _, err := svc.Analyze(ctx, sess.ID, 10); !errors.Is(err, domain.ErrAnalysisInFlight) {
		t.Errorf("concurrent Analyze() error = %v, want ErrAnalysisInFlight", err)
	}
	if _, err := svc.Prepare(ctx, sess.ID); !errors.Is(err, domain.ErrAnalysisInFlight) {
		t.Errorf("concurrent Prepare() error = %v, want ErrAnalysisInFlight", err)
	}
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("first Analyze() error = %v", err)
	}

	// The slot is free again.
	if _, err := svc.Analyze(ctx, sess.ID, 10); err != nil {
		t.Errorf("Analyze() after completion error = %v", err)
	}
}

func TestAnalyzeDiscardsStaleResult(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	provider := &fakeProvider{complete: func(ctx context.Context, _ *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		close(entered)
		<-release
		return &domainllm.CompletionResponse{Text: `[{"original": "old", "suggestion": "x", "reason": "r", "mode": "clarity"}]`}, nil
	}}

	svc := newTestService(t, provider, nil)
	ctx := context.Background()
	sess, _ := svc.Create(ctx, "old text")

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, sess.ID, 10)
		done <- err
	}()

	<-entered
	if _, err := svc.UpdateContent(ctx, sess.ID, "new text entirely"); err != nil {
		t.Fatal(err)
	}
	close(release)

	err := <-done
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError for stale analysis", err)
	}

	// The edited document and an empty suggestion set survive.
	got, _ := svc.Get(ctx, sess.ID)
	if got.Content != "new text entirely" {
		t.Errorf("Content = %q", got.Content)
	}
	if len(got.Suggestions) != 0 {
		t.Errorf("stale suggestions applied: %+v", got.Suggestions)
	}
}

func TestUpdateContentKeepsSuggestionSet(t *testing.T) {
	provider := replyWith(`[{"original": "foo", "suggestion": "bar", "reason": "r", "mode": "clarity"}]`)
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "foo and more")
	if _, err := svc.Analyze(ctx, sess.ID, 10); err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateContent(ctx, sess.ID, "completely new")
	if err != nil {
		t.Fatal(err)
	}
	// Editing never clears the set; anchors may go stale until the next
	// analysis replaces them.
	if len(updated.Suggestions) != 1 {
		t.Errorf("len(Suggestions) = %d, want 1", len(updated.Suggestions))
	}

	// Accepting against the moved document is refused.
	_, err = svc.AcceptSuggestion(ctx, sess.ID, updated.Suggestions[0].ID)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("AcceptSuggestion() error = %v, want ValidationError", err)
	}
}

func TestPrepareSnapshotsAndClears(t *testing.T) {
	provider := replyWith("rewritten document")
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "original document")
	sessAfter, err := svc.Prepare(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if sessAfter.Content != "rewritten document" {
		t.Errorf("Content = %q", sessAfter.Content)
	}
	if len(sessAfter.Suggestions) != 0 {
		t.Errorf("suggestions survived the rewrite: %+v", sessAfter.Suggestions)
	}
	if len(sessAfter.Versions) != 1 {
		t.Fatalf("len(Versions) = %d, want 1", len(sessAfter.Versions))
	}
	v := sessAfter.Versions[0]
	if v.Label != "Before prepare" || v.Content != "original document" {
		t.Errorf("snapshot = %q %q", v.Label, v.Content)
	}
}

func TestPrepareFailureLeavesDocument(t *testing.T) {
	provider := &fakeProvider{complete: func(context.Context, *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		return nil, &domain.ServiceError{Status: 500}
	}}
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "original document")
	_, err := svc.Prepare(ctx, sess.ID)
	var svcErr *domain.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error = %v, want ServiceError", err)
	}

	got, _ := svc.Get(ctx, sess.ID)
	if got.Content != "original document" {
		t.Errorf("Content = %q, want untouched original", got.Content)
	}
	if len(got.Versions) != 0 {
		t.Errorf("snapshot taken for a failed prepare: %+v", got.Versions)
	}
}

func TestRestoreVersionSnapshotsLive(t *testing.T) {
	svc := newTestService(t, replyWith(""), nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "draft one")
	saved, err := svc.SaveVersion(ctx, sess.ID, "milestone")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateContent(ctx, sess.ID, "draft two"); err != nil {
		t.Fatal(err)
	}

	restored, err := svc.RestoreVersion(ctx, sess.ID, saved.ID)
	if err != nil {
		t.Fatalf("RestoreVersion() error = %v", err)
	}
	if restored.Content != "draft one" {
		t.Errorf("Content = %q, want %q", restored.Content, "draft one")
	}

	// The discarded live content was snapshotted before the restore.
	if len(restored.Versions) != 2 {
		t.Fatalf("len(Versions) = %d, want 2", len(restored.Versions))
	}
	if restored.Versions[0].Label != "Before restore" || restored.Versions[0].Content != "draft two" {
		t.Errorf("Versions[0] = %q %q", restored.Versions[0].Label, restored.Versions[0].Content)
	}

	if _, err := svc.RestoreVersion(ctx, sess.ID, 42); err == nil {
		t.Error("RestoreVersion(unknown) error = nil, want NotFoundError")
	}
}

func TestNewDocumentSnapshotsAndResets(t *testing.T) {
	svc := newTestService(t, replyWith("assistant reply"), nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "keep this safe")
	if _, err := svc.SendChat(ctx, sess.ID, "hello"); err != nil {
		t.Fatal(err)
	}

	reset, err := svc.NewDocument(ctx, sess.ID)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	if reset.Content != "" {
		t.Errorf("Content = %q, want empty", reset.Content)
	}
	if len(reset.Chat) != 0 {
		t.Errorf("chat survived reset: %+v", reset.Chat)
	}
	if len(reset.Versions) != 1 || reset.Versions[0].Content != "keep this safe" {
		t.Errorf("Versions = %+v", reset.Versions)
	}

	// Resetting an already-empty document takes no snapshot.
	reset, err = svc.NewDocument(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reset.Versions) != 1 {
		t.Errorf("len(Versions) = %d, want 1", len(reset.Versions))
	}
}

func TestSendChat(t *testing.T) {
	var captured *domainllm.CompletionRequest
	provider := &fakeProvider{complete: func(_ context.Context, req *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		captured = req
		return &domainllm.CompletionResponse{Text: "it means plain writing"}, nil
	}}
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "the document body")
	chat, err := svc.SendChat(ctx, sess.ID, "what does this mean?")
	if err != nil {
		t.Fatalf("SendChat() error = %v", err)
	}

	if len(chat) != 2 {
		t.Fatalf("len(chat) = %d, want 2", len(chat))
	}
	if chat[0].Role != models.RoleUser || chat[1].Role != models.RoleAssistant {
		t.Errorf("roles = %q, %q", chat[0].Role, chat[1].Role)
	}
	if !strings.Contains(captured.System, "<document>\nthe document body\n</document>") {
		t.Error("document context missing from chat prompt")
	}

	if _, err := svc.SendChat(ctx, sess.ID, ""); err == nil {
		t.Error("SendChat(empty) error = nil, want ValidationError")
	}
}

func TestSendChatUpstreamFailureKeepsUserMessage(t *testing.T) {
	provider := &fakeProvider{complete: func(context.Context, *domainllm.CompletionRequest) (*domainllm.CompletionResponse, error) {
		return nil, &domain.ServiceError{Status: 503}
	}}
	svc := newTestService(t, provider, nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "doc")
	if _, err := svc.SendChat(ctx, sess.ID, "are you there?"); err == nil {
		t.Fatal("SendChat() error = nil, want ServiceError")
	}

	chat, _ := svc.Chat(ctx, sess.ID)
	if len(chat) != 1 || chat[0].Role != models.RoleUser {
		t.Errorf("chat = %+v, want the user message alone", chat)
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	kv := store.NewMemoryStore()
	svc := newTestService(t, replyWith("assistant reply"), kv)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "persistent content")
	if _, err := svc.SaveVersion(ctx, sess.ID, "v1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendChat(ctx, sess.ID, "hello"); err != nil {
		t.Fatal(err)
	}
	svc.Flush()

	// A fresh service over the same store rebuilds the session.
	svc2 := newTestService(t, replyWith(""), kv)
	got, err := svc2.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() after restart error = %v", err)
	}
	if got.Content != "persistent content" {
		t.Errorf("Content = %q", got.Content)
	}
	if len(got.Versions) != 1 || got.Versions[0].Label != "v1" {
		t.Errorf("Versions = %+v", got.Versions)
	}
	if len(got.Chat) != 2 {
		t.Errorf("len(Chat) = %d, want 2", len(got.Chat))
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt lost across restart")
	}
}

func TestPersistenceFailureNotSurfaced(t *testing.T) {
	svc := newTestService(t, replyWith(""), failingKV{})
	ctx := context.Background()

	// The store rejects every write; session operations still succeed.
	sess, err := svc.Create(ctx, "content")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.SaveVersion(ctx, sess.ID, "v1"); err != nil {
		t.Errorf("SaveVersion() error = %v", err)
	}
	if _, err := svc.UpdateContent(ctx, sess.ID, "changed"); err != nil {
		t.Errorf("UpdateContent() error = %v", err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	svc := newTestService(t, replyWith(""), nil)
	ctx := context.Background()

	sess, _ := svc.Create(ctx, "content")
	prefs, err := svc.UpdatePreferences(ctx, sess.ID, models.Preferences{
		ActiveCategories: []models.Category{models.CategoryGrammar},
	})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if len(prefs.ActiveCategories) != 1 || prefs.ActiveCategories[0] != models.CategoryGrammar {
		t.Errorf("ActiveCategories = %v", prefs.ActiveCategories)
	}

	// An empty set is invalid; analysis needs at least one focus area.
	if _, err := svc.UpdatePreferences(ctx, sess.ID, models.Preferences{}); err == nil {
		t.Error("UpdatePreferences(empty) error = nil, want ValidationError")
	}

	// Unknown category names are rejected.
	_, err = svc.UpdatePreferences(ctx, sess.ID, models.Preferences{
		ActiveCategories: []models.Category{"sparkle"},
	})
	if err == nil {
		t.Error("UpdatePreferences(unknown) error = nil, want ValidationError")
	}
}

// failingKV rejects all writes and reports every key missing.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, store.ErrKeyNotFound
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("store unavailable")
}

func (failingKV) Delete(context.Context, string) error { return errors.New("store unavailable") }
func (failingKV) Close() error                         { return nil }
