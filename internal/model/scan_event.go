// Package model defines domain entities for the application.
package model

import "time"

// ScanEvent represents a single resolution of a short link.
// Events are append-only history; they are never updated or deleted.
type ScanEvent struct {
	ID          string `json:"id"` // ULID (time-sortable)
	ShortLinkID string `json:"short_link_id"`

	// Request metadata
	UserAgent     string `json:"user_agent,omitempty"`     // truncated to 500 chars
	SourceAddress string `json:"source_address,omitempty"` // truncated to 100 chars

	// Whether the visiting context was a restrictive in-app browser.
	IsRestrictiveContext bool `json:"is_restrictive_context"`

	ScannedAt time.Time `json:"scanned_at"`
}
