package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ResolveCacheHits       uint64
	ResolveCacheMisses     uint64
	ResolveDurationCount   uint64
	ResolveDurationTotalNs int64
	URLLinksCreated        uint64
	TextLinksCreated       uint64
	LinksDeactivated       uint64
	ScansRecorded          uint64
	ScansDropped           uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	resolveCacheHits       uint64
	resolveCacheMisses     uint64
	resolveDurationCount   uint64
	resolveDurationTotalNs int64
	urlLinksCreated        uint64
	textLinksCreated       uint64
	linksDeactivated       uint64
	scansRecorded          uint64
	scansDropped           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ResolveCacheHits:       atomic.LoadUint64(&m.resolveCacheHits),
		ResolveCacheMisses:     atomic.LoadUint64(&m.resolveCacheMisses),
		ResolveDurationCount:   atomic.LoadUint64(&m.resolveDurationCount),
		ResolveDurationTotalNs: atomic.LoadInt64(&m.resolveDurationTotalNs),
		URLLinksCreated:        atomic.LoadUint64(&m.urlLinksCreated),
		TextLinksCreated:       atomic.LoadUint64(&m.textLinksCreated),
		LinksDeactivated:       atomic.LoadUint64(&m.linksDeactivated),
		ScansRecorded:          atomic.LoadUint64(&m.scansRecorded),
		ScansDropped:           atomic.LoadUint64(&m.scansDropped),
	}
}

// IncResolveCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncResolveCacheHit() {
	atomic.AddUint64(&m.resolveCacheHits, 1)
}

// IncResolveCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncResolveCacheMiss() {
	atomic.AddUint64(&m.resolveCacheMisses, 1)
}

// ObserveResolveDuration records resolution duration.
func (m *InMemoryRecorder) ObserveResolveDuration(duration time.Duration) {
	atomic.AddUint64(&m.resolveDurationCount, 1)
	atomic.AddInt64(&m.resolveDurationTotalNs, duration.Nanoseconds())
}

// IncLinkCreated increments the created counter for a content kind.
func (m *InMemoryRecorder) IncLinkCreated(kind string) {
	if kind == "text" {
		atomic.AddUint64(&m.textLinksCreated, 1)
		return
	}
	atomic.AddUint64(&m.urlLinksCreated, 1)
}

// IncLinkDeactivated increments the deactivated counter.
func (m *InMemoryRecorder) IncLinkDeactivated() {
	atomic.AddUint64(&m.linksDeactivated, 1)
}

// IncScanRecorded increments the scan counter for a status.
func (m *InMemoryRecorder) IncScanRecorded(status string) {
	if status == "dropped" {
		atomic.AddUint64(&m.scansDropped, 1)
		return
	}
	atomic.AddUint64(&m.scansRecorded, 1)
}
