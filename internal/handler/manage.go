package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scanlink/scanlink/internal/handler/dto"
	"github.com/scanlink/scanlink/internal/service"
)

// ManageHandler handles listing and deactivation of short links.
type ManageHandler struct {
	svc    *service.CreationService
	logger *slog.Logger
}

// NewManageHandler creates a new ManageHandler.
func NewManageHandler(svc *service.CreationService, logger *slog.Logger) *ManageHandler {
	return &ManageHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/manage. Returns all active, unexpired entries,
// newest first; the inline sweep runs before listing so stale entries
// never appear.
func (h *ManageHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkEntries(links))
}

// Delete handles DELETE /api/manage. Deactivation is idempotent and only
// flips the active flag; rows are never hard-deleted.
func (h *ManageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := h.svc.Deactivate(r.Context(), req.ShortCode); err != nil {
		if errors.Is(err, service.ErrMissingCode) {
			writeError(w, http.StatusBadRequest, "MISSING_CODE", "Missing shortCode")
			return
		}
		h.logger.Error("delete_error", "short_code", req.ShortCode, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteResponse{Success: true})
}
