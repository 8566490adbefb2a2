// Package handler exposes the editing session API over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/httputil"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/session"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/utils"
)

// SessionHandler handles session lifecycle and document requests.
type SessionHandler struct {
	service *session.Service
	logger  *slog.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(service *session.Service, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// HealthCheck responds 200 for load balancer probes.
// GET /health
func (h *SessionHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionRequest struct {
	Content string `json:"content"`
}

// CreateSession starts a new editing session.
// POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sess, err := h.service.Create(r.Context(), req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, sess)
}

// GetSession returns the full session state plus the live word count.
// GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	sess, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"session":    sess,
		"word_count": utils.CountWords(sess.Content),
	})
}

type updateDocumentRequest struct {
	Content string `json:"content"`
}

// UpdateDocument replaces the document text from the editor.
// PATCH /api/sessions/{id}/document
func (h *SessionHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req updateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.service.UpdateContent(r.Context(), id, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// NewDocument blanks the document after snapshotting it.
// POST /api/sessions/{id}/document/new
func (h *SessionHandler) NewDocument(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	sess, err := h.service.NewDocument(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}
