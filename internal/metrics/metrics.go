// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Resolution metrics
	IncResolveCacheHit()
	IncResolveCacheMiss()
	ObserveResolveDuration(duration time.Duration)

	// Link lifecycle metrics
	IncLinkCreated(kind string) // kind: "url" or "text"
	IncLinkDeactivated()

	// Scan logging metrics
	IncScanRecorded(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
