// Package scanlog records scan events off the response path.
package scanlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/scanlink/scanlink/internal/metrics"
	"github.com/scanlink/scanlink/internal/model"
)

const (
	maxUserAgentLen  = 500
	maxSourceAddrLen = 100

	// DefaultWriteTimeout bounds each detached scan write.
	DefaultWriteTimeout = 2 * time.Second
)

// Store is the persistence hook for scan events.
type Store interface {
	RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error
}

// Recorder persists scan events without blocking callers. Failures are
// logged and swallowed: a lost visit record is an acceptable degradation,
// a delayed redirect is not.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a scan recorder. A zero timeout falls back to
// DefaultWriteTimeout.
func New(store Store, logger *slog.Logger, recorder metrics.Recorder, timeout time.Duration) *Recorder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &Recorder{
		store:   store,
		logger:  logger.With("component", "scanlog"),
		metrics: recorder,
		timeout: timeout,
	}
}

// NewEvent builds a scan event from raw request metadata, applying the
// field truncation the schema expects.
func NewEvent(linkID, userAgent, sourceAddr string, restrictive bool, at time.Time) *model.ScanEvent {
	return &model.ScanEvent{
		ID:                   ulid.Make().String(),
		ShortLinkID:          linkID,
		UserAgent:            TruncateUserAgent(userAgent),
		SourceAddress:        TruncateSourceAddr(sourceAddr),
		IsRestrictiveContext: restrictive,
		ScannedAt:            at,
	}
}

// Record persists one scan event synchronously.
func (r *Recorder) Record(ctx context.Context, event *model.ScanEvent) error {
	if err := r.store.RecordScan(ctx, event.ShortLinkID, event); err != nil {
		r.metrics.IncScanRecorded("dropped")
		return fmt.Errorf("record scan: %w", err)
	}
	r.metrics.IncScanRecorded("success")
	return nil
}

// RecordAsync persists without blocking the caller (fire-and-forget).
// Each write runs on its own goroutine under a bounded timeout.
func (r *Recorder) RecordAsync(event *model.ScanEvent) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.RecordScan(ctx, event.ShortLinkID, event); err != nil {
			r.logger.Warn("failed to record scan",
				"short_link_id", event.ShortLinkID,
				"error", err,
			)
			r.metrics.IncScanRecorded("dropped")
			return
		}

		r.logger.Debug("scan recorded", "short_link_id", event.ShortLinkID)
		r.metrics.IncScanRecorded("success")
	}()
}

// Drain waits for in-flight writes to finish, bounded by ctx. Used during
// graceful shutdown so best-effort writes get a chance to land.
func (r *Recorder) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scan log drain: %w", ctx.Err())
	}
}

// TruncateUserAgent truncates a user agent to the stored maximum.
func TruncateUserAgent(ua string) string {
	if len(ua) > maxUserAgentLen {
		return ua[:maxUserAgentLen]
	}
	return ua
}

// TruncateSourceAddr truncates a source address to the stored maximum.
func TruncateSourceAddr(addr string) string {
	if len(addr) > maxSourceAddrLen {
		return addr[:maxSourceAddrLen]
	}
	return addr
}
