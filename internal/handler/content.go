package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/service"
)

// ContentHandler serves the site data document.
type ContentHandler struct {
	content      *service.ContentService
	exposeErrors bool
	logger       *slog.Logger
}

// NewContentHandler creates a new ContentHandler. exposeErrors attaches
// internal error detail to 500 responses; keep it off in production.
func NewContentHandler(content *service.ContentService, exposeErrors bool, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, exposeErrors: exposeErrors, logger: logger}
}

// GetSiteData returns the site data document, seeding it with defaults on
// first read. Public, no authentication.
// GET /api/site-data
func (h *ContentHandler) GetSiteData(w http.ResponseWriter, r *http.Request) {
	data, err := h.content.GetSiteData(r.Context())
	if err != nil {
		writeInternalError(w, h.logger, h.exposeErrors, "Failed to load site data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"siteData": data})
}

// updateSiteDataRequest is the expected payload for UpdateSiteData.
type updateSiteDataRequest struct {
	SiteData *model.SiteData `json:"siteData"`
}

// UpdateSiteData validates the submitted document and replaces the stored one
// wholesale. A document with any violation is rejected with the full list of
// field errors; nothing is persisted.
// POST /api/site-data
func (h *ContentHandler) UpdateSiteData(w http.ResponseWriter, r *http.Request) {
	var req updateSiteDataRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SiteData == nil {
		writeError(w, http.StatusBadRequest, "siteData is required")
		return
	}

	if err := h.content.UpdateSiteData(r.Context(), *req.SiteData); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeValidationErrors(w, verr.Errors)
			return
		}
		writeInternalError(w, h.logger, h.exposeErrors, "Failed to save site data", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
