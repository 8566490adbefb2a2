// Package session owns the live editing sessions: the document, the
// anchored suggestion set, the version ledger, the chat log, and the
// preferences, plus their debounced persistence streams.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/config"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/annotate"
	llmsvc "github.com/aaronpowner1970/words-of-plainness-editor/internal/service/llm"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/store"
)

// Labels for the implicit snapshots taken before destructive rewrites.
const (
	labelBeforePrepare = "Before prepare"
	labelBeforeRestore = "Before restore"
	labelBeforeNewDoc  = "Before new document"
)

// Service manages editing sessions. Live sessions are held in memory and
// lazily loaded from the key-value store; content, chat, and preferences
// are persisted through independently debounced streams, versions are
// written immediately. Storage failures are logged and never surfaced -
// the in-memory session is the source of truth while it lives.
type Service struct {
	kv       store.KV
	debounce *store.Debouncer
	engine   *annotate.Engine
	registry *llmsvc.Registry
	model    string
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*state
}

// state wraps a session with its own lock and the in-flight marker that
// serializes annotation requests: only one analysis or transform may run
// per session at a time.
type state struct {
	mu       sync.Mutex
	sess     *models.Session
	inFlight bool
}

// sessionMeta is the small blob persisted under the meta key.
type sessionMeta struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewService creates the session service. The registry and model serve
// the assistant chat; the engine owns analysis and transform.
func NewService(kv store.KV, debounce *store.Debouncer, engine *annotate.Engine, registry *llmsvc.Registry, model string, logger *slog.Logger) *Service {
	return &Service{
		kv:       kv,
		debounce: debounce,
		engine:   engine,
		registry: registry,
		model:    model,
		logger:   logger,
		sessions: make(map[uuid.UUID]*state),
	}
}

// Create starts a new session with the given initial content.
func (s *Service) Create(ctx context.Context, content string) (*models.Session, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	sess := models.NewSession(content)
	st := &state{sess: sess}

	s.mu.Lock()
	s.sessions[sess.ID] = st
	s.mu.Unlock()

	// Write meta and content eagerly so the session survives an immediate
	// restart; both best effort.
	s.put(ctx, store.MetaKey(sess.ID.String()), sessionMeta{ID: sess.ID, CreatedAt: sess.CreatedAt})
	s.put(ctx, store.ContentKey(sess.ID.String()), sess.Content)

	s.logger.Info("session created", "session_id", sess.ID, "words", wordCount(sess.Content))
	return snapshot(sess), nil
}

// Get returns a copy of the session state.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return snapshot(st.sess), nil
}

// UpdateContent replaces the document text on the editing path. The
// suggestion set is left alone: anchors may go stale, and the next
// analysis replaces them wholesale. The write is debounced.
func (s *Service) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Session, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sess.Content = content
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueContent(st.sess)

	return snapshot(st.sess), nil
}

// NewDocument blanks the document, snapshotting non-empty live content
// first, and clears the suggestion set and the chat log.
func (s *Service) NewDocument(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if wordCount(st.sess.Content) > 0 {
		st.sess.Versions, _ = saveVersion(st.sess.Versions, st.sess.Content, labelBeforeNewDoc)
		s.put(ctx, store.VersionsKey(id.String()), st.sess.Versions)
	}

	st.sess.Content = ""
	st.sess.Suggestions = []*models.Suggestion{}
	st.sess.Chat = []models.ChatMessage{}
	st.sess.UpdatedAt = time.Now().UTC()

	s.enqueueContent(st.sess)
	s.enqueueChat(st.sess)

	s.logger.Info("document reset", "session_id", id)
	return snapshot(st.sess), nil
}

// Analyze runs the annotation engine over the current document with the
// session's active categories and replaces the suggestion set with the
// result. At most one analysis or transform may be in flight per session.
// On failure the document and the prior suggestion set are untouched.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID, limit int) ([]*models.Suggestion, error) {
	if limit > config.MaxSuggestionTarget {
		limit = config.MaxSuggestionTarget
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if st.inFlight {
		st.mu.Unlock()
		return nil, domain.ErrAnalysisInFlight
	}
	st.inFlight = true
	content := st.sess.Content
	categories := st.sess.Prefs.ActiveCategories
	st.mu.Unlock()

	defer s.clearInFlight(st)

	if wordCount(content) == 0 {
		return nil, &domain.ValidationError{Message: "document is empty"}
	}

	suggestions, err := s.engine.Analyze(ctx, content, categories, limit)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// The request ran without the lock; if the document moved underneath
	// it the anchors are meaningless, so the stale result is discarded.
	if st.sess.Content != content {
		return nil, &domain.ValidationError{Message: "document changed during analysis; run analysis again"}
	}

	st.sess.Suggestions = suggestions
	st.sess.UpdatedAt = time.Now().UTC()

	return copySuggestions(suggestions), nil
}

// Suggestions returns the pending set in render order.
func (s *Service) Suggestions(ctx context.Context, id uuid.UUID) ([]*models.Suggestion, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return copySuggestions(renderOrder(st.sess.Suggestions)), nil
}

// AcceptSuggestion applies a suggestion to the document and reconciles the
// remaining anchors.
func (s *Service) AcceptSuggestion(ctx context.Context, id uuid.UUID, suggestionID int) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	content, remaining, err := acceptSuggestion(st.sess.Content, st.sess.Suggestions, suggestionID)
	if err != nil {
		return nil, err
	}

	st.sess.Content = content
	st.sess.Suggestions = remaining
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueContent(st.sess)

	return snapshot(st.sess), nil
}

// DismissSuggestion removes a suggestion without touching the document.
func (s *Service) DismissSuggestion(ctx context.Context, id uuid.UUID, suggestionID int) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	remaining, err := dismissSuggestion(st.sess.Suggestions, suggestionID)
	if err != nil {
		return nil, err
	}

	st.sess.Suggestions = remaining
	st.sess.UpdatedAt = time.Now().UTC()

	return snapshot(st.sess), nil
}

// Prepare runs the whole-document transform. The prior content is
// snapshotted into the ledger before the rewrite is applied (mandatory
// pre-destructive-write versioning) and the suggestion set is cleared,
// since every anchor refers to the replaced text. All-or-nothing: any
// failed segment leaves the document untouched.
func (s *Service) Prepare(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	if st.inFlight {
		st.mu.Unlock()
		return nil, domain.ErrAnalysisInFlight
	}
	st.inFlight = true
	content := st.sess.Content
	st.mu.Unlock()

	defer s.clearInFlight(st)

	if wordCount(content) == 0 {
		return nil, &domain.ValidationError{Message: "document is empty"}
	}

	rewritten, err := s.engine.Transform(ctx, content)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.sess.Content != content {
		return nil, &domain.ValidationError{Message: "document changed during prepare; try again"}
	}

	st.sess.Versions, _ = saveVersion(st.sess.Versions, content, labelBeforePrepare)
	s.put(ctx, store.VersionsKey(id.String()), st.sess.Versions)

	st.sess.Content = rewritten
	st.sess.Suggestions = []*models.Suggestion{}
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueContent(st.sess)

	s.logger.Info("document prepared", "session_id", id, "words", wordCount(rewritten))
	return snapshot(st.sess), nil
}

// SaveVersion snapshots the live content with an optional label.
func (s *Service) SaveVersion(ctx context.Context, id uuid.UUID, label string) (*models.Version, error) {
	if err := validateLabel(label); err != nil {
		return nil, err
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	var v *models.Version
	st.sess.Versions, v = saveVersion(st.sess.Versions, st.sess.Content, label)
	s.put(ctx, store.VersionsKey(id.String()), st.sess.Versions)

	out := *v
	return &out, nil
}

// ListVersions returns the ledger, newest first.
func (s *Service) ListVersions(ctx context.Context, id uuid.UUID) ([]*models.Version, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*models.Version, len(st.sess.Versions))
	for i, v := range st.sess.Versions {
		c := *v
		out[i] = &c
	}
	return out, nil
}

// RestoreVersion replaces the document with a snapshot's content. The
// about-to-be-discarded live content is snapshotted first, the restore
// lookup itself never mutates the ledger, and the suggestion set is
// cleared because its anchors refer to the replaced text.
func (s *Service) RestoreVersion(ctx context.Context, id uuid.UUID, versionID int64) (*models.Session, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	v := findVersion(st.sess.Versions, versionID)
	if v == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("version %d not found", versionID)}
	}

	st.sess.Versions, _ = saveVersion(st.sess.Versions, st.sess.Content, labelBeforeRestore)
	s.put(ctx, store.VersionsKey(id.String()), st.sess.Versions)

	st.sess.Content = v.Content
	st.sess.Suggestions = []*models.Suggestion{}
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueueContent(st.sess)

	s.logger.Info("version restored", "session_id", id, "version_id", versionID)
	return snapshot(st.sess), nil
}

// DeleteVersion removes a snapshot. Idempotent on missing ids.
func (s *Service) DeleteVersion(ctx context.Context, id uuid.UUID, versionID int64) error {
	st, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sess.Versions = deleteVersion(st.sess.Versions, versionID)
	s.put(ctx, store.VersionsKey(id.String()), st.sess.Versions)
	return nil
}

// GetPreferences returns the session preferences.
func (s *Service) GetPreferences(ctx context.Context, id uuid.UUID) (*models.Preferences, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	prefs := st.sess.Prefs
	prefs.ActiveCategories = append([]models.Category(nil), prefs.ActiveCategories...)
	return &prefs, nil
}

// UpdatePreferences overwrites the preferences. Small value, no merge.
func (s *Service) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs models.Preferences) (*models.Preferences, error) {
	if err := validatePreferences(prefs); err != nil {
		return nil, err
	}

	st, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sess.Prefs = prefs
	st.sess.UpdatedAt = time.Now().UTC()
	s.enqueuePreferences(st.sess)

	out := st.sess.Prefs
	out.ActiveCategories = append([]models.Category(nil), out.ActiveCategories...)
	return &out, nil
}

// Flush forces all pending debounced writes. Called on shutdown.
func (s *Service) Flush() {
	s.debounce.Flush()
}

// load returns the live state for a session, reading it from storage on a
// cold start. A session exists if its meta or content key does.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*state, error) {
	s.mu.Lock()
	if st, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	sess, err := s.loadFromStore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if st, ok := s.sessions[id]; ok {
		return st, nil
	}
	st := &state{sess: sess}
	s.sessions[id] = st
	return st, nil
}

// loadFromStore rebuilds a session from its persistence streams. Missing
// or unreadable streams degrade to their zero state; only a session with
// no meta and no content at all is treated as not found.
func (s *Service) loadFromStore(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	key := id.String()

	var meta sessionMeta
	haveMeta := s.get(ctx, store.MetaKey(key), &meta)

	contentBytes, contentErr := s.kv.Get(ctx, store.ContentKey(key))
	if !haveMeta && contentErr != nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("session %s not found", id)}
	}

	sess := models.NewSession(string(contentBytes))
	sess.ID = id
	if haveMeta {
		sess.CreatedAt = meta.CreatedAt
	}

	var versions []*models.Version
	if s.get(ctx, store.VersionsKey(key), &versions) {
		sess.Versions = versions
	}
	var chat []models.ChatMessage
	if s.get(ctx, store.ChatKey(key), &chat) {
		sess.Chat = chat
	}
	var prefs models.Preferences
	if s.get(ctx, store.PreferencesKey(key), &prefs) && len(prefs.ActiveCategories) > 0 {
		sess.Prefs = prefs
	}

	s.logger.Info("session loaded from storage", "session_id", id, "versions", len(sess.Versions), "chat", len(sess.Chat))
	return sess, nil
}

func (s *Service) clearInFlight(st *state) {
	st.mu.Lock()
	st.inFlight = false
	st.mu.Unlock()
}

// enqueueContent schedules a debounced content write. Callers hold the
// session lock.
func (s *Service) enqueueContent(sess *models.Session) {
	s.debounce.Enqueue(store.ContentKey(sess.ID.String()), []byte(sess.Content), config.ContentSaveDelay)
}

// enqueueChat persists the most recent MaxChatHistory messages; the
// in-memory log stays unbounded for the session's lifetime.
func (s *Service) enqueueChat(sess *models.Session) {
	chat := sess.Chat
	if len(chat) > config.MaxChatHistory {
		chat = chat[len(chat)-config.MaxChatHistory:]
	}
	data, err := json.Marshal(chat)
	if err != nil {
		s.logger.Error("marshal chat log", "session_id", sess.ID, "error", err)
		return
	}
	s.debounce.Enqueue(store.ChatKey(sess.ID.String()), data, config.ChatSaveDelay)
}

func (s *Service) enqueuePreferences(sess *models.Session) {
	data, err := json.Marshal(sess.Prefs)
	if err != nil {
		s.logger.Error("marshal preferences", "session_id", sess.ID, "error", err)
		return
	}
	s.debounce.Enqueue(store.PreferencesKey(sess.ID.String()), data, config.PreferencesSaveDelay)
}

// put writes a JSON (or string) value immediately, logging failures.
// Persistence is best effort; the caller's operation always proceeds.
func (s *Service) put(ctx context.Context, key string, value any) {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			s.logger.Error("marshal for persistence", "key", key, "error", err)
			return
		}
	}

	if err := s.kv.Set(ctx, key, data); err != nil {
		s.logger.Error("persistence write failed", "key", key, "error", err)
	}
}

// get reads and unmarshals a value, returning false on miss or decode
// failure (logged, non-fatal).
func (s *Service) get(ctx context.Context, key string, dest any) bool {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if err != store.ErrKeyNotFound {
			s.logger.Error("persistence read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Error("corrupt persisted value", "key", key, "error", err)
		return false
	}
	return true
}

// snapshot copies the session for handler serialization so callers never
// alias the live state.
func snapshot(sess *models.Session) *models.Session {
	out := *sess
	out.Suggestions = copySuggestions(sess.Suggestions)
	out.Versions = make([]*models.Version, len(sess.Versions))
	for i, v := range sess.Versions {
		c := *v
		out.Versions[i] = &c
	}
	out.Chat = append([]models.ChatMessage(nil), sess.Chat...)
	out.Prefs.ActiveCategories = append([]models.Category(nil), sess.Prefs.ActiveCategories...)
	return &out
}

func copySuggestions(set []*models.Suggestion) []*models.Suggestion {
	out := make([]*models.Suggestion, len(set))
	for i, s := range set {
		c := *s
		out[i] = &c
	}
	return out
}
