package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/registry"
)

// MemStore is an in-memory registry.Store for tests.
type MemStore struct {
	mu     sync.Mutex
	links  []*model.ShortLink // creation order
	byCode map[string]*model.ShortLink
	events map[string][]*model.ScanEvent // keyed by link ID

	// FailInsertWith, when set, makes every InsertLink return this error.
	FailInsertWith error
	// FailWith, when set, makes every other operation return this error.
	FailWith error
}

var _ registry.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		byCode: make(map[string]*model.ShortLink),
		events: make(map[string][]*model.ScanEvent),
	}
}

// InsertLink stores a copy of the link, enforcing code uniqueness.
func (s *MemStore) InsertLink(ctx context.Context, link *model.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsertWith != nil {
		return s.FailInsertWith
	}
	if _, exists := s.byCode[link.Code]; exists {
		return registry.ErrCodeExists
	}

	stored := *link
	s.links = append(s.links, &stored)
	s.byCode[stored.Code] = &stored
	return nil
}

// GetLinkByCode returns a copy of the stored link.
func (s *MemStore) GetLinkByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}
	stored, ok := s.byCode[code]
	if !ok {
		return nil, registry.ErrLinkNotFound
	}
	link := *stored
	return &link, nil
}

// ListActiveLinks returns active, unexpired links, newest first.
func (s *MemStore) ListActiveLinks(ctx context.Context, now time.Time) ([]*model.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []*model.ShortLink
	for i := len(s.links) - 1; i >= 0; i-- {
		stored := s.links[i]
		if stored.IsActive && !now.After(stored.ExpiresAt) {
			link := *stored
			out = append(out, &link)
		}
	}
	return out, nil
}

// LatestDisplayName returns the display name of the most recently created
// link, or "" when the store is empty.
func (s *MemStore) LatestDisplayName(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return "", s.FailWith
	}
	if len(s.links) == 0 {
		return "", nil
	}
	return s.links[len(s.links)-1].DisplayName, nil
}

// DeactivateLink idempotently marks a link inactive.
func (s *MemStore) DeactivateLink(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	if stored, ok := s.byCode[code]; ok {
		stored.IsActive = false
	}
	return nil
}

// DeactivateExpired flips is_active on expired links.
func (s *MemStore) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, stored := range s.links {
		if stored.IsActive && now.After(stored.ExpiresAt) {
			stored.IsActive = false
			n++
		}
	}
	return n, nil
}

// RecordScan appends a scan event and bumps the owning link's counters.
func (s *MemStore) RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	for _, stored := range s.links {
		if stored.ID == linkID {
			ev := *event
			s.events[linkID] = append(s.events[linkID], &ev)
			stored.ScanCount++
			at := ev.ScannedAt
			stored.LastScannedAt = &at
			return nil
		}
	}
	return registry.ErrLinkNotFound
}

// LinkByCode returns the stored link itself for assertions (not a copy).
func (s *MemStore) LinkByCode(code string) *model.ShortLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byCode[code]
}

// Events returns the scan events recorded for a link ID.
func (s *MemStore) Events(linkID string) []*model.ScanEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.ScanEvent(nil), s.events[linkID]...)
}

// Len returns the number of stored links.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}
