package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/httputil"
)

// suggestionOp is the shared shape of accept and dismiss.
type suggestionOp func(ctx context.Context, id uuid.UUID, suggestionID int) (*models.Session, error)

type analyzeRequest struct {
	// Limit caps the suggestion count; zero or absent asks for an
	// exhaustive pass.
	Limit int `json:"limit"`
}

// Analyze runs the annotation engine and replaces the suggestion set.
// POST /api/sessions/{id}/analyze
func (h *SessionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req analyzeRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	suggestions, err := h.service.Analyze(r.Context(), id, req.Limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// ListSuggestions returns pending suggestions in render order.
// GET /api/sessions/{id}/suggestions
func (h *SessionHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	suggestions, err := h.service.Suggestions(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// AcceptSuggestion applies a suggestion to the document.
// POST /api/sessions/{id}/suggestions/{sid}/accept
func (h *SessionHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	h.mutateSuggestion(w, r, h.service.AcceptSuggestion)
}

// DismissSuggestion removes a suggestion without editing the document.
// POST /api/sessions/{id}/suggestions/{sid}/dismiss
func (h *SessionHandler) DismissSuggestion(w http.ResponseWriter, r *http.Request) {
	h.mutateSuggestion(w, r, h.service.DismissSuggestion)
}

// Prepare runs the whole-document transform.
// POST /api/sessions/{id}/prepare
func (h *SessionHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	sess, err := h.service.Prepare(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) mutateSuggestion(w http.ResponseWriter, r *http.Request, op suggestionOp) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	sid, err := strconv.Atoi(r.PathValue("sid"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid suggestion id")
		return
	}

	sess, err := op(r.Context(), id, sid)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}
