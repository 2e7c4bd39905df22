// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/service"
)

// CreateRequest represents the request body for creating a short link.
type CreateRequest struct {
	Content                string `json:"content"`
	ExpiresInMinutes       int    `json:"expiresInMinutes,omitempty"`
	RouteHint              string `json:"routeHint,omitempty"`
	RestrictiveContextFlag bool   `json:"restrictiveContextFlag,omitempty"`
}

// CreateResponse represents a successful creation result.
type CreateResponse struct {
	IsURL       bool      `json:"isURL"`
	ShortCode   string    `json:"shortCode"`
	Name        string    `json:"name"`
	ExpiresAt   time.Time `json:"expiresAt"`
	QRURL       string    `json:"qrUrl"`
	Content     string    `json:"content"`
	RouteHint   string    `json:"routeHint"`
	CompactMode bool      `json:"compactMode"`
}

// DeleteRequest represents the request body for deactivating a link.
type DeleteRequest struct {
	ShortCode string `json:"shortCode"`
}

// DeleteResponse represents the result of a deactivation.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// LinkEntry represents one entry in the manage listing.
type LinkEntry struct {
	ShortCode     string     `json:"shortCode"`
	Name          string     `json:"name"`
	ContentKind   string     `json:"contentKind"`
	Payload       string     `json:"payload"`
	RouteHint     string     `json:"routeHint,omitempty"`
	CompactMode   bool       `json:"compactMode"`
	ScanCount     int64      `json:"scanCount"`
	LastScannedAt *time.Time `json:"lastScannedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiresAt     time.Time  `json:"expiresAt"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ToCreateResponse converts a service result to its response DTO.
func ToCreateResponse(result *service.CreateResult) *CreateResponse {
	return &CreateResponse{
		IsURL:       result.IsURL,
		ShortCode:   result.Code,
		Name:        result.DisplayName,
		ExpiresAt:   result.ExpiresAt,
		QRURL:       result.PublicURL,
		Content:     result.Payload,
		RouteHint:   string(result.RouteHint),
		CompactMode: result.CompactMode,
	}
}

// ToLinkEntry converts a ShortLink to its listing DTO.
func ToLinkEntry(link *model.ShortLink) LinkEntry {
	return LinkEntry{
		ShortCode:     link.Code,
		Name:          link.DisplayName,
		ContentKind:   string(link.ContentKind),
		Payload:       link.Payload,
		RouteHint:     link.RouteHint,
		CompactMode:   link.CompactMode,
		ScanCount:     link.ScanCount,
		LastScannedAt: link.LastScannedAt,
		CreatedAt:     link.CreatedAt,
		ExpiresAt:     link.ExpiresAt,
	}
}

// ToLinkEntries converts a slice of ShortLinks, never returning nil so
// the empty listing serializes as [].
func ToLinkEntries(links []*model.ShortLink) []LinkEntry {
	entries := make([]LinkEntry, len(links))
	for i, link := range links {
		entries[i] = ToLinkEntry(link)
	}
	return entries
}
