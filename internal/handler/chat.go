package handler

import (
	"net/http"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/httputil"
)

// GetChat returns the session chat log.
// GET /api/sessions/{id}/chat
func (h *SessionHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	chat, err := h.service.Chat(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": chat,
	})
}

type sendChatRequest struct {
	Content string `json:"content"`
}

// SendChat appends a user message and returns the updated log including
// the assistant reply.
// POST /api/sessions/{id}/chat
func (h *SessionHandler) SendChat(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req sendChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chat, err := h.service.SendChat(r.Context(), id, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": chat,
	})
}
