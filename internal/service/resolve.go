package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/scanlink/scanlink/internal/browser"
	"github.com/scanlink/scanlink/internal/cache"
	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/registry"
	"github.com/scanlink/scanlink/internal/route"
	"github.com/scanlink/scanlink/internal/scanlog"
)

// ResponseKind selects the client response shape for a resolution.
type ResponseKind int

const (
	// ResponseRedirect is a plain 302 to the stored payload.
	ResponseRedirect ResponseKind = iota
	// ResponseInterstitial is a manual-action page for restrictive
	// in-app browser contexts where automatic redirects are unreliable.
	ResponseInterstitial
	// ResponseText renders stored plain text directly.
	ResponseText
)

// ClientContext carries the request metadata resolution needs.
type ClientContext struct {
	UserAgent       string
	SourceAddress   string
	RestrictiveFlag bool // explicit client-supplied in-app flag
}

// Resolution is the outcome of a successful code resolution.
type Resolution struct {
	Kind   ResponseKind
	Target string // destination URL (redirect and interstitial)
	Text   string // stored text (text render)
	Link   *model.ShortLink
}

// ResolutionService looks up codes and selects the client response.
type ResolutionService struct {
	registry *registry.Registry
	cache    *cache.Cache // optional; nil disables the hot-path cache
	scans    *scanlog.Recorder
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewResolutionService creates a ResolutionService. cache may be nil.
func NewResolutionService(reg *registry.Registry, cacheClient *cache.Cache, scans *scanlog.Recorder, logger *slog.Logger, recorder metrics.Recorder) *ResolutionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ResolutionService{
		registry: reg,
		cache:    cacheClient,
		scans:    scans,
		logger:   logger.With("component", "resolution"),
		metrics:  recorder,
	}
}

// Resolve extracts the code from a request path, enforces expiry and
// active state, records the visit off the response path and picks the
// response shape. Unknown and expired codes are indistinguishable to the
// caller: both return ErrLinkNotFound.
func (s *ResolutionService) Resolve(ctx context.Context, requestPath string, client ClientContext) (*Resolution, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveResolveDuration(time.Since(start))
	}()

	code := route.ExtractCode(requestPath)
	if code == "" {
		return nil, ErrLinkNotFound
	}

	link, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !link.IsResolvableAt(now) {
		// Lazy expiry: an entry past its expiry but still marked
		// active is deactivated on this first access.
		if link.IsActive && link.IsExpiredAt(now) {
			if err := s.registry.Deactivate(ctx, code); err != nil {
				s.logger.Warn("lazy deactivation failed", "short_code", code, "error", err)
			} else {
				s.metrics.IncLinkDeactivated()
			}
		}
		s.evict(ctx, code)
		return nil, ErrLinkNotFound
	}

	restrictive := client.RestrictiveFlag || browser.IsRestrictive(client.UserAgent)

	// Fire-and-forget: the response never waits on the scan write.
	event := scanlog.NewEvent(link.ID, client.UserAgent, client.SourceAddress, restrictive, now)
	s.scans.RecordAsync(event)

	s.logger.Info("resolve_success",
		"short_code", code,
		"content_kind", link.ContentKind,
		"restrictive_context", restrictive,
	)

	resolution := &Resolution{Link: link}
	switch {
	case link.ContentKind == model.ContentKindText:
		resolution.Kind = ResponseText
		resolution.Text = link.Payload
	case restrictive:
		resolution.Kind = ResponseInterstitial
		resolution.Target = link.Payload
	default:
		resolution.Kind = ResponseRedirect
		resolution.Target = link.Payload
	}

	return resolution, nil
}

// lookup fetches a link cache-first, falling back to the registry and
// backfilling the cache on a hit.
func (s *ResolutionService) lookup(ctx context.Context, code string) (*model.ShortLink, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLink(ctx, code)
		if err == nil {
			s.metrics.IncResolveCacheHit()
			return cached.ToShortLink(code), nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncResolveCacheMiss()
			if negative, _ := s.cache.IsNegativelyCached(ctx, code); negative {
				return nil, ErrLinkNotFound
			}
		}
		// Redis errors fall through to the database.
	}

	link, err := s.registry.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, registry.ErrLinkNotFound) {
			if s.cache != nil {
				if err := s.cache.SetNegativeCache(ctx, code); err != nil {
					s.logger.Warn("negative cache write failed", "short_code", code, "error", err)
				}
			}
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetLink(ctx, code, link); err != nil {
			s.logger.Warn("cache backfill failed", "short_code", code, "error", err)
		}
	}

	return link, nil
}

// evict drops a code from the cache, best effort.
func (s *ResolutionService) evict(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteLink(ctx, code); err != nil {
		s.logger.Warn("cache eviction failed", "short_code", code, "error", err)
	}
}
