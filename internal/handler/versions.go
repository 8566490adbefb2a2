package handler

import (
	"net/http"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/httputil"
)

type saveVersionRequest struct {
	Label string `json:"label"`
}

// SaveVersion snapshots the live document.
// POST /api/sessions/{id}/versions
func (h *SessionHandler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req saveVersionRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	version, err := h.service.SaveVersion(r.Context(), id, req.Label)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// ListVersions returns the ledger, newest first.
// GET /api/sessions/{id}/versions
func (h *SessionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"versions": versions,
	})
}

// RestoreVersion replaces the document with a snapshot.
// POST /api/sessions/{id}/versions/{vid}/restore
func (h *SessionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	vid, err := pathInt(r, "vid")
	if err != nil {
		handleError(w, err)
		return
	}

	sess, err := h.service.RestoreVersion(r.Context(), id, vid)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, sess)
}

// DeleteVersion removes a snapshot from the ledger.
// DELETE /api/sessions/{id}/versions/{vid}
func (h *SessionHandler) DeleteVersion(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	vid, err := pathInt(r, "vid")
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.DeleteVersion(r.Context(), id, vid); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
