package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/registry"
	"github.com/scanlink/scanlink/internal/route"
	"github.com/scanlink/scanlink/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCreationService(store *testutil.MemStore) *CreationService {
	logger := discardLogger()
	reg := registry.New(store, logger)
	return NewCreationService(reg, nil, "", logger, metrics.NewInMemory())
}

func TestClassifyContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantKind    model.ContentKind
		wantPayload string
	}{
		{"https url", "https://example.com/page", model.ContentKindURL, "https://example.com/page"},
		{"http url", "http://example.com", model.ContentKindURL, "http://example.com"},
		{"bare domain", "example.com", model.ContentKindURL, "https://example.com"},
		{"www domain with path", "www.example.com/path", model.ContentKindURL, "https://www.example.com/path"},
		{"domain with port", "example.com:8443/x", model.ContentKindURL, "https://example.com:8443/x"},
		{"plain text", "hello world", model.ContentKindText, "hello world"},
		{"unsupported scheme", "ftp://example.com/file", model.ContentKindText, "ftp://example.com/file"},
		{"not a domain", "just-a-note", model.ContentKindText, "just-a-note"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kind, payload := classifyContent(tt.content)
			if kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", kind, tt.wantKind)
			}
			if payload != tt.wantPayload {
				t.Errorf("payload = %q, want %q", payload, tt.wantPayload)
			}
		})
	}
}

func TestCreate_URL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := newCreationService(store)

	before := time.Now().UTC()
	result, err := svc.Create(ctx, CreateInput{
		Content:          "example.com",
		ExpiresInMinutes: 60,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !result.IsURL {
		t.Error("expected isURL = true")
	}
	if result.Payload != "https://example.com" {
		t.Errorf("payload = %q, want normalized https://example.com", result.Payload)
	}
	if len(result.Code) != registry.CodeLength {
		t.Errorf("code length = %d, want %d", len(result.Code), registry.CodeLength)
	}
	if result.DisplayName != "QR-001" {
		t.Errorf("display name = %s, want QR-001", result.DisplayName)
	}

	wantExpiry := before.Add(time.Hour)
	if result.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || result.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expires at = %v, want roughly %v", result.ExpiresAt, wantExpiry)
	}

	wantURL := "https://sl.example/go/" + result.Code
	if result.PublicURL != wantURL {
		t.Errorf("public URL = %q, want %q", result.PublicURL, wantURL)
	}

	stored := store.LinkByCode(result.Code)
	if stored == nil {
		t.Fatal("link not persisted")
	}
	if !stored.IsActive {
		t.Error("persisted link should be active")
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newCreationService(testutil.NewMemStore())

	if _, err := svc.Create(ctx, CreateInput{Content: "   "}); !errors.Is(err, ErrMissingContent) {
		t.Errorf("expected ErrMissingContent, got %v", err)
	}

	if _, err := svc.Create(ctx, CreateInput{Content: "https://example.com"}); !errors.Is(err, ErrMissingExpiry) {
		t.Errorf("expected ErrMissingExpiry, got %v", err)
	}

	if _, err := svc.Create(ctx, CreateInput{Content: "https://example.com", ExpiresInMinutes: -5}); !errors.Is(err, ErrInvalidExpiry) {
		t.Errorf("expected ErrInvalidExpiry, got %v", err)
	}
}

// Text submissions are persisted too and default to a 24 hour expiry.
func TestCreate_Text(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := newCreationService(store)

	result, err := svc.Create(ctx, CreateInput{
		Content:       "hello world",
		RequestScheme: "https",
		RequestHost:   "sl.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if result.IsURL {
		t.Error("expected isURL = false")
	}
	if result.Payload != "hello world" {
		t.Errorf("payload = %q, want verbatim text", result.Payload)
	}
	if result.Code == "" {
		t.Error("text entries should still get a short code")
	}

	wantExpiry := time.Now().UTC().Add(24 * time.Hour)
	if result.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || result.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expires at = %v, want roughly %v", result.ExpiresAt, wantExpiry)
	}

	stored := store.LinkByCode(result.Code)
	if stored == nil {
		t.Fatal("text link not persisted")
	}
	if stored.ContentKind != model.ContentKindText {
		t.Errorf("stored kind = %s, want text", stored.ContentKind)
	}
}

func TestCreate_CompactMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newCreationService(testutil.NewMemStore())

	wechatUA := "Mozilla/5.0 (iPhone) MicroMessenger/8.0.30"

	result, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com",
		ExpiresInMinutes: 30,
		RouteHint:        "share",
		UserAgent:        wechatUA,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !result.CompactMode {
		t.Error("expected compact mode for WeChat user agent")
	}
	if result.RouteHint != route.HintShare {
		t.Errorf("route hint = %s, want share", result.RouteHint)
	}

	prefix := "https://sl.example/s/" + result.Code + "?"
	if !strings.HasPrefix(result.PublicURL, prefix) {
		t.Errorf("public URL = %q, want prefix %q", result.PublicURL, prefix)
	}

	disguise := strings.TrimPrefix(result.PublicURL, prefix)
	found := false
	for _, p := range route.DisguiseParams() {
		if p == disguise {
			found = true
		}
	}
	if !found {
		t.Errorf("disguise param %q not in fixed set", disguise)
	}

	// The explicit flag works without a matching user agent.
	flagged, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com",
		ExpiresInMinutes: 30,
		RestrictiveFlag:  true,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !flagged.CompactMode {
		t.Error("expected compact mode for explicit flag")
	}
}

func TestCreate_BaseURLOverride(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	logger := discardLogger()
	svc := NewCreationService(registry.New(store, logger), nil, "https://s.example/", logger, nil)

	result, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com",
		ExpiresInMinutes: 10,
		RequestScheme:    "http",
		RequestHost:      "ignored.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	want := "https://s.example/go/" + result.Code
	if result.PublicURL != want {
		t.Errorf("public URL = %q, want %q", result.PublicURL, want)
	}
}

func TestCreate_DisplayNameSequence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newCreationService(testutil.NewMemStore())

	for i, want := range []string{"QR-001", "QR-002", "QR-003"} {
		result, err := svc.Create(ctx, CreateInput{
			Content:          "https://example.com",
			ExpiresInMinutes: 10,
			RequestScheme:    "https",
			RequestHost:      "sl.example",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if result.DisplayName != want {
			t.Errorf("display name %d = %s, want %s", i, result.DisplayName, want)
		}
	}
}

func TestCreate_AllocationExhausted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	store.FailInsertWith = registry.ErrCodeExists
	svc := newCreationService(store)

	_, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com",
		ExpiresInMinutes: 10,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if !errors.Is(err, registry.ErrAllocationExhausted) {
		t.Fatalf("expected ErrAllocationExhausted, got %v", err)
	}
}

// Creation and listing sweep expired entries inline.
func TestListActive_SweepsExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := newCreationService(store)

	fresh, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com/fresh",
		ExpiresInMinutes: 60,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	stale, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com/stale",
		ExpiresInMinutes: 1,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create stale: %v", err)
	}

	// Force the second entry past its expiry.
	store.LinkByCode(stale.Code).ExpiresAt = time.Now().UTC().Add(-time.Minute)

	links, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(links) != 1 || links[0].Code != fresh.Code {
		t.Fatalf("expected only the fresh link, got %d entries", len(links))
	}
	if store.LinkByCode(stale.Code).IsActive {
		t.Error("stale link should have been swept inactive")
	}
}

func TestDeactivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testutil.NewMemStore()
	svc := newCreationService(store)

	if err := svc.Deactivate(ctx, ""); !errors.Is(err, ErrMissingCode) {
		t.Errorf("expected ErrMissingCode, got %v", err)
	}

	result, err := svc.Create(ctx, CreateInput{
		Content:          "https://example.com",
		ExpiresInMinutes: 60,
		RequestScheme:    "https",
		RequestHost:      "sl.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(ctx, result.Code); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Deactivate(ctx, result.Code); err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if store.LinkByCode(result.Code).IsActive {
		t.Error("link should be inactive")
	}
}
