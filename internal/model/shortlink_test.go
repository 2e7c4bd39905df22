package model

import (
	"testing"
	"time"
)

func TestShortLink_Status(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name string
		link ShortLink
		want LinkStatus
	}{
		{
			name: "active unexpired",
			link: ShortLink{IsActive: true, ExpiresAt: now.Add(time.Hour)},
			want: LinkStatusActive,
		},
		{
			name: "active but expired",
			link: ShortLink{IsActive: true, ExpiresAt: now.Add(-time.Minute)},
			want: LinkStatusExpired,
		},
		{
			name: "deactivated",
			link: ShortLink{IsActive: false, ExpiresAt: now.Add(time.Hour)},
			want: LinkStatusDisabled,
		},
		{
			name: "deactivated and expired",
			link: ShortLink{IsActive: false, ExpiresAt: now.Add(-time.Hour)},
			want: LinkStatusDisabled,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.link.Status(); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestShortLink_IsResolvableAt(t *testing.T) {
	t.Parallel()

	now := time.Now()

	link := ShortLink{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	if !link.IsResolvableAt(now) {
		t.Error("active unexpired link should be resolvable")
	}
	if link.IsResolvableAt(now.Add(2 * time.Hour)) {
		t.Error("expired link should not be resolvable")
	}

	link.IsActive = false
	if link.IsResolvableAt(now) {
		t.Error("deactivated link should not be resolvable")
	}
}

func TestShortLink_ToCachedShortLink(t *testing.T) {
	t.Parallel()

	expiresAt := time.Unix(1700000000, 0)
	link := &ShortLink{
		ID:          "link-123",
		Code:        "Ab3dEf7h",
		ContentKind: ContentKindURL,
		Payload:     "https://example.com",
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}

	cached := link.ToCachedShortLink()

	if cached.ID != "link-123" {
		t.Errorf("ID = %s, want link-123", cached.ID)
	}
	if cached.ContentKind != "url" {
		t.Errorf("ContentKind = %s, want url", cached.ContentKind)
	}
	if cached.Payload != "https://example.com" {
		t.Errorf("Payload = %s, want https://example.com", cached.Payload)
	}
	if cached.IsActive != "1" {
		t.Errorf("IsActive = %s, want 1", cached.IsActive)
	}
	if cached.ExpiresAt != "1700000000" {
		t.Errorf("ExpiresAt = %s, want 1700000000", cached.ExpiresAt)
	}
}

func TestCachedShortLink_ToShortLink(t *testing.T) {
	t.Parallel()

	cached := &CachedShortLink{
		ID:          "link-456",
		ContentKind: "text",
		Payload:     "hello world",
		IsActive:    "0",
		ExpiresAt:   "1700000000",
	}

	link := cached.ToShortLink("Zz9yXx1w")

	if link.Code != "Zz9yXx1w" {
		t.Errorf("Code = %s, want Zz9yXx1w", link.Code)
	}
	if link.ContentKind != ContentKindText {
		t.Errorf("ContentKind = %s, want text", link.ContentKind)
	}
	if link.IsActive {
		t.Error("IsActive should be false")
	}
	if link.ExpiresAt.Unix() != 1700000000 {
		t.Errorf("ExpiresAt = %d, want 1700000000", link.ExpiresAt.Unix())
	}
}

func TestContentKind_IsValid(t *testing.T) {
	t.Parallel()

	if !ContentKindURL.IsValid() || !ContentKindText.IsValid() {
		t.Error("known kinds should be valid")
	}
	if ContentKind("image").IsValid() {
		t.Error("unknown kind should be invalid")
	}
}
