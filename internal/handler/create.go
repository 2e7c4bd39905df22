package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/scanlink/scanlink/internal/handler/dto"
	"github.com/scanlink/scanlink/internal/registry"
	"github.com/scanlink/scanlink/internal/service"
)

// CreateHandler handles link creation requests.
type CreateHandler struct {
	svc    *service.CreationService
	logger *slog.Logger
}

// NewCreateHandler creates a new CreateHandler.
func NewCreateHandler(svc *service.CreationService, logger *slog.Logger) *CreateHandler {
	return &CreateHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/create.
func (h *CreateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateInput{
		Content:          req.Content,
		ExpiresInMinutes: req.ExpiresInMinutes,
		RouteHint:        req.RouteHint,
		RestrictiveFlag:  req.RestrictiveContextFlag,
		UserAgent:        r.Header.Get("User-Agent"),
		RequestScheme:    requestScheme(r),
		RequestHost:      r.Host,
	}

	result, err := h.svc.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("link_created",
		"short_code", result.Code,
		"name", result.DisplayName,
		"is_url", result.IsURL,
	)

	writeJSON(w, http.StatusOK, dto.ToCreateResponse(result))
}

// handleServiceError maps service errors to HTTP responses.
func (h *CreateHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingContent):
		writeError(w, http.StatusBadRequest, "MISSING_CONTENT", "Missing required fields")
	case errors.Is(err, service.ErrMissingExpiry):
		writeError(w, http.StatusBadRequest, "MISSING_EXPIRY", "Missing required fields")
	case errors.Is(err, service.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, "CONTENT_TOO_LONG", "Content exceeds maximum length")
	case errors.Is(err, service.ErrInvalidExpiry):
		writeError(w, http.StatusBadRequest, "INVALID_EXPIRY", "expiresInMinutes must be positive")
	case errors.Is(err, registry.ErrAllocationExhausted):
		h.logger.Error("allocation exhausted")
		writeError(w, http.StatusInternalServerError, "ALLOCATION_EXHAUSTED", "Unable to generate unique short code")
	default:
		h.logger.Error("create_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
