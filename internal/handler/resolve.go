package handler

import (
	"log/slog"
	"net/http"

	"github.com/scanlink/scanlink/internal/service"
)

// ResolveHandler serves short-code resolution requests.
type ResolveHandler struct {
	svc    *service.ResolutionService
	logger *slog.Logger
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(svc *service.ResolutionService, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		svc:    svc,
		logger: logger,
	}
}

// Resolve handles GET requests on every resolution route. The code is
// extracted from the path inside the service; any trailing query string
// is ignored.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	client := service.ClientContext{
		UserAgent:       r.Header.Get("User-Agent"),
		SourceAddress:   getClientIP(r),
		RestrictiveFlag: r.URL.Query().Get("inapp") == "1",
	}

	resolution, err := h.svc.Resolve(r.Context(), r.URL.Path, client)
	if err != nil {
		// Unknown and expired codes render the same page on purpose:
		// probing clients learn nothing about historical codes.
		h.logger.Info("resolve_not_found", "path", r.URL.Path)
		h.NotFoundPage(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")

	switch resolution.Kind {
	case service.ResponseInterstitial:
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		renderInterstitial(w, resolution.Target)
	case service.ResponseText:
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		renderTextPage(w, resolution.Link.DisplayName, resolution.Text)
	default:
		http.Redirect(w, r, resolution.Target, http.StatusFound)
	}
}

// NotFoundPage renders the shared 404 page. Also wired as the router's
// fallback handler so unknown paths look identical to expired codes.
func (h *ResolveHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w)
}
