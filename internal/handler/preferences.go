package handler

import (
	"log/slog"
	"net/http"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/httputil"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/service/annotate"
)

// GetPreferences returns the session preferences.
// GET /api/sessions/{id}/preferences
func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences overwrites the session preferences.
// PUT /api/sessions/{id}/preferences
func (h *SessionHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req models.Preferences
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// CategoriesHandler serves the editorial category catalog.
type CategoriesHandler struct {
	catalog *annotate.Catalog
	logger  *slog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(catalog *annotate.Catalog, logger *slog.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListCategories enumerates the editorial focus areas the editor can
// toggle.
// GET /api/categories
func (h *CategoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"categories": h.catalog.List(),
	})
}
