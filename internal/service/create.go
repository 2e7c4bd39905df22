// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scanlink/scanlink/internal/browser"
	"github.com/scanlink/scanlink/internal/cache"
	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/registry"
	"github.com/scanlink/scanlink/internal/route"
)

// Service errors.
var (
	ErrMissingContent = errors.New("content is required")
	ErrContentTooLong = errors.New("content exceeds maximum length")
	ErrMissingExpiry  = errors.New("expires_in_minutes is required for URL content")
	ErrInvalidExpiry  = errors.New("expires_in_minutes must be positive")
	ErrLinkNotFound   = errors.New("link not found")
	ErrMissingCode    = errors.New("short code is required")
)

const (
	maxPayloadLength = 2048

	// textDefaultExpiry applies to TEXT submissions without an explicit
	// expiry. URL submissions must always provide one.
	textDefaultExpiry = 24 * time.Hour
)

// bareDomainPattern matches domain-like strings without a scheme, such as
// "www.example.com/path". Deliberately permissive: anything that fails
// both strict parsing and this pattern is treated as plain text.
var bareDomainPattern = regexp.MustCompile(`^(www\.)?[a-zA-Z0-9][a-zA-Z0-9-]*(\.[a-zA-Z0-9-]+)+(:[0-9]+)?([/?#]\S*)?$`)

// CreationService validates submitted content and allocates registry
// entries for it.
type CreationService struct {
	registry *registry.Registry
	cache    *cache.Cache // optional; nil disables resolution-cache invalidation
	baseURL  string
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewCreationService creates a CreationService. baseURL optionally
// overrides the request host when composing public URLs; pass "" to
// derive it per request. cache may be nil.
func NewCreationService(reg *registry.Registry, cacheClient *cache.Cache, baseURL string, logger *slog.Logger, recorder metrics.Recorder) *CreationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CreationService{
		registry: reg,
		cache:    cacheClient,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger.With("component", "creation"),
		metrics:  recorder,
	}
}

// CreateInput defines input for creating a short link.
type CreateInput struct {
	Content          string
	ExpiresInMinutes int // 0 means absent
	RouteHint        string
	RestrictiveFlag  bool // explicit client-supplied in-app flag
	UserAgent        string
	RequestScheme    string
	RequestHost      string
}

// CreateResult is what the creation endpoint returns.
type CreateResult struct {
	IsURL       bool
	Code        string
	DisplayName string
	ExpiresAt   time.Time
	PublicURL   string
	Payload     string
	RouteHint   route.Hint
	CompactMode bool
}

// Create classifies the submitted content, allocates a registry entry and
// composes the public-facing redirect URL.
func (s *CreationService) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMissingContent
	}
	if len(content) > maxPayloadLength {
		return nil, ErrContentTooLong
	}

	kind, payload := classifyContent(content)

	var ttl time.Duration
	switch kind {
	case model.ContentKindURL:
		if input.ExpiresInMinutes == 0 {
			return nil, ErrMissingExpiry
		}
		if input.ExpiresInMinutes < 0 {
			return nil, ErrInvalidExpiry
		}
		ttl = time.Duration(input.ExpiresInMinutes) * time.Minute
	case model.ContentKindText:
		// Text entries are persisted too; without an explicit expiry
		// they default to 24 hours.
		switch {
		case input.ExpiresInMinutes < 0:
			return nil, ErrInvalidExpiry
		case input.ExpiresInMinutes == 0:
			ttl = textDefaultExpiry
		default:
			ttl = time.Duration(input.ExpiresInMinutes) * time.Minute
		}
	}

	// Sweep before creating so stale entries never linger in listings.
	// Best effort: a failed sweep must not block creation.
	if err := s.registry.SweepExpired(ctx); err != nil {
		s.logger.Warn("expiry sweep failed", "error", err)
	}

	compact := input.RestrictiveFlag || browser.IsRestrictive(input.UserAgent)
	hint := route.Normalize(input.RouteHint)

	displayName, err := s.registry.NextDisplayName(ctx)
	if err != nil {
		return nil, fmt.Errorf("next display name: %w", err)
	}

	now := time.Now().UTC()
	link := &model.ShortLink{
		ID:          ulid.Make().String(),
		DisplayName: displayName,
		ContentKind: kind,
		Payload:     payload,
		RouteHint:   string(hint),
		CompactMode: compact,
		IsActive:    true,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := s.registry.Create(ctx, link); err != nil {
		return nil, err
	}

	s.metrics.IncLinkCreated(string(kind))
	s.logger.Info("link_created",
		"short_code", link.Code,
		"name", link.DisplayName,
		"content_kind", kind,
		"route_hint", hint,
		"compact_mode", compact,
	)

	return &CreateResult{
		IsURL:       kind == model.ContentKindURL,
		Code:        link.Code,
		DisplayName: link.DisplayName,
		ExpiresAt:   link.ExpiresAt,
		PublicURL:   s.composePublicURL(input.RequestScheme, input.RequestHost, hint, compact, link.Code),
		Payload:     payload,
		RouteHint:   hint,
		CompactMode: compact,
	}, nil
}

// ListActive sweeps expired entries and returns the remaining active
// ones, newest first.
func (s *CreationService) ListActive(ctx context.Context) ([]*model.ShortLink, error) {
	if err := s.registry.SweepExpired(ctx); err != nil {
		s.logger.Warn("expiry sweep failed", "error", err)
	}
	return s.registry.ListActive(ctx)
}

// Deactivate idempotently disables a code and evicts it from the
// resolution cache.
func (s *CreationService) Deactivate(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrMissingCode
	}

	if err := s.registry.Deactivate(ctx, code); err != nil {
		return err
	}

	s.metrics.IncLinkDeactivated()
	s.logger.Info("link_deactivated", "short_code", code)

	if s.cache != nil {
		if err := s.cache.DeleteLink(ctx, code); err != nil {
			// Eventual consistency is acceptable; the cached copy
			// expires on its own TTL.
			s.logger.Warn("cache invalidation failed", "short_code", code, "error", err)
		}
	}

	return nil
}

// composePublicURL builds the public redirect URL from request scheme and
// host (or the configured base URL), the chosen path segment and the
// code. Compact mode appends a disguise query parameter.
func (s *CreationService) composePublicURL(scheme, host string, hint route.Hint, compact bool, code string) string {
	base := s.baseURL
	if base == "" {
		if scheme == "" {
			scheme = "https"
		}
		base = scheme + "://" + host
	}

	publicURL := fmt.Sprintf("%s/%s/%s", base, route.PathSegment(hint, compact), code)
	if compact {
		publicURL += "?" + route.PickDisguise()
	}
	return publicURL
}

// classifyContent decides whether raw content is a URL or plain text and
// returns the normalized payload. Strict parsing runs first; bare
// domain-like strings get an https:// prefix; everything else is text.
func classifyContent(content string) (model.ContentKind, string) {
	if parsed, err := url.Parse(content); err == nil {
		if (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
			return model.ContentKindURL, content
		}
	}

	if bareDomainPattern.MatchString(content) {
		return model.ContentKindURL, "https://" + content
	}

	return model.ContentKindText, content
}
