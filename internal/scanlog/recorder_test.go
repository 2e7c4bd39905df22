package scanlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/model"
)

type fakeStore struct {
	mu     sync.Mutex
	events []*model.ScanEvent
	delay  time.Duration
	err    error
}

func (s *fakeStore) RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorder_RecordAsync(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := New(store, discardLogger(), metrics.NewInMemory(), 0)

	event := NewEvent("link-1", "test-agent", "203.0.113.7", false, time.Now().UTC())
	rec.RecordAsync(event)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rec.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if store.count() != 1 {
		t.Fatalf("recorded events = %d, want 1", store.count())
	}
}

// A deliberately slow store must not delay the caller.
func TestRecorder_RecordAsync_SlowStoreDoesNotBlock(t *testing.T) {
	t.Parallel()

	store := &fakeStore{delay: 500 * time.Millisecond}
	rec := New(store, discardLogger(), nil, time.Second)

	event := NewEvent("link-1", "test-agent", "", false, time.Now().UTC())

	start := time.Now()
	rec.RecordAsync(event)
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Fatalf("RecordAsync blocked for %v", elapsed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rec.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if store.count() != 1 {
		t.Fatalf("recorded events = %d, want 1", store.count())
	}
}

// Store failures are swallowed and counted as dropped.
func TestRecorder_RecordAsync_FailureSwallowed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("connection refused")}
	inmem := metrics.NewInMemory()
	rec := New(store, discardLogger(), inmem, 0)

	rec.RecordAsync(NewEvent("link-1", "test-agent", "", false, time.Now().UTC()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rec.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	snap := inmem.Snapshot()
	if snap.ScansDropped != 1 {
		t.Errorf("scans dropped = %d, want 1", snap.ScansDropped)
	}
	if snap.ScansRecorded != 0 {
		t.Errorf("scans recorded = %d, want 0", snap.ScansRecorded)
	}
}

// A store slower than the write timeout drops the event.
func TestRecorder_RecordAsync_TimeoutDrops(t *testing.T) {
	t.Parallel()

	store := &fakeStore{delay: time.Second}
	inmem := metrics.NewInMemory()
	rec := New(store, discardLogger(), inmem, 20*time.Millisecond)

	rec.RecordAsync(NewEvent("link-1", "test-agent", "", false, time.Now().UTC()))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rec.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}

	if store.count() != 0 {
		t.Errorf("recorded events = %d, want 0", store.count())
	}
	if snap := inmem.Snapshot(); snap.ScansDropped != 1 {
		t.Errorf("scans dropped = %d, want 1", snap.ScansDropped)
	}
}

func TestRecorder_Drain_Timeout(t *testing.T) {
	t.Parallel()

	store := &fakeStore{delay: 5 * time.Second}
	rec := New(store, discardLogger(), nil, 10*time.Second)

	rec.RecordAsync(NewEvent("link-1", "test-agent", "", false, time.Now().UTC()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rec.Drain(ctx); err == nil {
		t.Fatal("expected drain to time out")
	}
}

func TestNewEvent_Truncation(t *testing.T) {
	t.Parallel()

	longUA := strings.Repeat("u", 600)
	longAddr := strings.Repeat("1", 150)

	event := NewEvent("link-1", longUA, longAddr, true, time.Now().UTC())

	if len(event.UserAgent) != 500 {
		t.Errorf("user agent length = %d, want 500", len(event.UserAgent))
	}
	if len(event.SourceAddress) != 100 {
		t.Errorf("source address length = %d, want 100", len(event.SourceAddress))
	}
	if !event.IsRestrictiveContext {
		t.Error("restrictive flag should carry through")
	}
	if event.ID == "" {
		t.Error("event ID should be set")
	}
}
