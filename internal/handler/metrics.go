package handler

import (
	"fmt"
	"net/http"

	"github.com/scanlink/scanlink/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "scanlink_resolve_cache_hits_total %d\n", snap.ResolveCacheHits)
	writeMetric(w, "scanlink_resolve_cache_misses_total %d\n", snap.ResolveCacheMisses)
	writeMetric(w, "scanlink_resolve_duration_seconds_count %d\n", snap.ResolveDurationCount)
	writeMetric(w, "scanlink_resolve_duration_seconds_sum %.6f\n", float64(snap.ResolveDurationTotalNs)/1e9)

	writeMetric(w, "scanlink_links_created_total{kind=\"url\"} %d\n", snap.URLLinksCreated)
	writeMetric(w, "scanlink_links_created_total{kind=\"text\"} %d\n", snap.TextLinksCreated)
	writeMetric(w, "scanlink_links_deactivated_total %d\n", snap.LinksDeactivated)

	writeMetric(w, "scanlink_scans_recorded_total{status=\"success\"} %d\n", snap.ScansRecorded)
	writeMetric(w, "scanlink_scans_recorded_total{status=\"dropped\"} %d\n", snap.ScansDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
