// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// ContentKind classifies what a short link carries.
type ContentKind string

const (
	ContentKindURL  ContentKind = "url"
	ContentKindText ContentKind = "text"
)

// IsValid checks if the content kind is a known value.
func (k ContentKind) IsValid() bool {
	return k == ContentKindURL || k == ContentKindText
}

// LinkStatus represents the computed status of a short link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusExpired  LinkStatus = "expired"
	LinkStatusDisabled LinkStatus = "disabled"
)

// ShortLink represents a single short-code entry.
type ShortLink struct {
	ID            string      `json:"id"`
	Code          string      `json:"short_code"`
	DisplayName   string      `json:"name"`
	ContentKind   ContentKind `json:"content_kind"`
	Payload       string      `json:"payload"`
	RouteHint     string      `json:"route_hint,omitempty"`
	CompactMode   bool        `json:"compact_mode"`
	IsActive      bool        `json:"is_active"`
	ScanCount     int64       `json:"scan_count"`
	LastScannedAt *time.Time  `json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	ExpiresAt     time.Time   `json:"expires_at"`
}

// Status computes the current status of the link.
func (l *ShortLink) Status() LinkStatus {
	if !l.IsActive {
		return LinkStatusDisabled
	}
	if l.IsExpiredAt(time.Now()) {
		return LinkStatusExpired
	}
	return LinkStatusActive
}

// IsExpiredAt reports whether the link's expiry has elapsed at the given time.
func (l *ShortLink) IsExpiredAt(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// IsResolvableAt reports whether the link may serve a resolution at the
// given time.
func (l *ShortLink) IsResolvableAt(now time.Time) bool {
	return l.IsActive && !l.IsExpiredAt(now)
}

// CachedShortLink represents the subset of link data stored in the Redis
// resolution cache. Uses string types for Redis hash compatibility.
type CachedShortLink struct {
	ID          string `redis:"id"`
	ContentKind string `redis:"content_kind"`
	Payload     string `redis:"payload"`
	IsActive    string `redis:"is_active"` // "1" or "0"
	ExpiresAt   string `redis:"expires_at"` // Unix timestamp
}

// ToShortLink converts CachedShortLink to the ShortLink domain model.
// Only the fields needed on the resolution path are populated.
func (c *CachedShortLink) ToShortLink(code string) *ShortLink {
	link := &ShortLink{
		ID:          c.ID,
		Code:        code,
		ContentKind: ContentKind(c.ContentKind),
		Payload:     c.Payload,
		IsActive:    c.IsActive == "1",
	}

	if ts, err := strconv.ParseInt(c.ExpiresAt, 10, 64); err == nil {
		link.ExpiresAt = time.Unix(ts, 0)
	}

	return link
}

// ToCachedShortLink converts a ShortLink to its cached representation.
func (l *ShortLink) ToCachedShortLink() *CachedShortLink {
	return &CachedShortLink{
		ID:          l.ID,
		ContentKind: string(l.ContentKind),
		Payload:     l.Payload,
		IsActive:    boolToString(l.IsActive),
		ExpiresAt:   strconv.FormatInt(l.ExpiresAt.Unix(), 10),
	}
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
