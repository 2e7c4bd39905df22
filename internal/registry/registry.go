// Package registry manages the short-code namespace: code allocation,
// display-name sequencing, expiry sweeps and scan bookkeeping. It runs
// against an injected Store so tests can substitute an in-memory fake.
package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/scanlink/scanlink/internal/model"
)

// Errors shared by every Store implementation.
var (
	ErrLinkNotFound        = errors.New("short link not found")
	ErrCodeExists          = errors.New("short code already exists")
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
)

const (
	// CodeLength is the fixed length of generated short codes.
	CodeLength = 8

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// maxCodeRetries bounds allocation attempts before giving up.
	maxCodeRetries = 10

	displayNamePrefix = "QR-"
)

// Store is the persistence contract the registry runs against.
// Uniqueness of codes is the store's responsibility: InsertLink must
// return ErrCodeExists when the code column's unique index rejects the
// row.
type Store interface {
	InsertLink(ctx context.Context, link *model.ShortLink) error
	GetLinkByCode(ctx context.Context, code string) (*model.ShortLink, error)
	ListActiveLinks(ctx context.Context, now time.Time) ([]*model.ShortLink, error)
	LatestDisplayName(ctx context.Context) (string, error)
	DeactivateLink(ctx context.Context, code string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error
}

// Registry coordinates code allocation and lifecycle state on top of a Store.
type Registry struct {
	store  Store
	logger *slog.Logger
}

// New creates a Registry backed by the given store.
func New(store Store, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With("component", "registry"),
	}
}

// Create persists a new entry under a freshly allocated code. The store's
// unique index is the real uniqueness signal: a candidate code is
// generated, the insert is attempted, and a conflict triggers a new
// candidate, up to maxCodeRetries attempts before ErrAllocationExhausted.
func (r *Registry) Create(ctx context.Context, link *model.ShortLink) error {
	for attempt := 1; attempt <= maxCodeRetries; attempt++ {
		code, err := newCode()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		link.Code = code

		err = r.store.InsertLink(ctx, link)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCodeExists) {
			r.logger.Warn("short code collision, retrying",
				"attempt", attempt,
			)
			continue
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return ErrAllocationExhausted
}

// NextDisplayName derives the next sequential label ("QR-001", "QR-002",
// ...) from the most recently created entry. Best effort only: concurrent
// creations may produce duplicate names, which is acceptable because the
// name is cosmetic, not a lookup key.
func (r *Registry) NextDisplayName(ctx context.Context) (string, error) {
	latest, err := r.store.LatestDisplayName(ctx)
	if err != nil {
		return "", fmt.Errorf("latest display name: %w", err)
	}

	last := 0
	if suffix, ok := strings.CutPrefix(latest, displayNamePrefix); ok {
		if n, err := strconv.Atoi(suffix); err == nil {
			last = n
		}
	}

	return fmt.Sprintf("%s%03d", displayNamePrefix, last+1), nil
}

// SweepExpired flips is_active to false on every entry whose expiry has
// elapsed. Runs inline before creation and listing operations; safe to
// run concurrently since it only ever transitions active to inactive.
func (r *Registry) SweepExpired(ctx context.Context) error {
	n, err := r.store.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate expired: %w", err)
	}
	if n > 0 {
		r.logger.Info("expired links swept", "count", n)
	}
	return nil
}

// FindByCode looks up an entry by exact code match.
func (r *Registry) FindByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	return r.store.GetLinkByCode(ctx, code)
}

// ListActive returns all active, unexpired entries, newest first.
func (r *Registry) ListActive(ctx context.Context) ([]*model.ShortLink, error) {
	return r.store.ListActiveLinks(ctx, time.Now().UTC())
}

// Deactivate idempotently marks an entry inactive. Once inactive an entry
// never becomes active again.
func (r *Registry) Deactivate(ctx context.Context, code string) error {
	return r.store.DeactivateLink(ctx, code)
}

// RecordScan appends a scan event and bumps the owning entry's counters.
// The store applies both changes atomically.
func (r *Registry) RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error {
	return r.store.RecordScan(ctx, linkID, event)
}

// newCode samples a CodeLength-character code from the alphanumeric
// alphabet using crypto/rand.
func newCode() (string, error) {
	b := make([]byte, CodeLength)
	for i := range b {
		idx, err := cryptoRandInt(len(codeAlphabet))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx]
	}
	return string(b), nil
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
