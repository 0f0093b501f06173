// Package observability registers Prometheus metrics for the sync and
// offline layers.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	syncPassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilerp",
		Subsystem: "sync",
		Name:      "passes_total",
		Help:      "Sync passes by outcome (online or offline-degraded).",
	}, []string{"outcome"})

	resolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilerp",
		Subsystem: "sync",
		Name:      "resolves_total",
		Help:      "Freshness resolutions by data type and result.",
	}, []string{"data_type", "result"})

	edgeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mobilerp",
		Subsystem: "edge",
		Name:      "requests_total",
		Help:      "Edge interceptor requests by serving outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(syncPassesTotal, resolveTotal, edgeRequestsTotal)
}

// RecordSyncPass counts one completed sync pass.
func RecordSyncPass(offline bool) {
	outcome := "online"
	if offline {
		outcome = "offline"
	}
	syncPassesTotal.WithLabelValues(outcome).Inc()
}

// RecordResolve counts one freshness resolution.
func RecordResolve(dataType string, fresh bool) {
	result := "fresh"
	if !fresh {
		result = "stale"
	}
	resolveTotal.WithLabelValues(dataType, result).Inc()
}

// Edge interceptor outcomes.
const (
	EdgeOutcomeNetwork    = "network"
	EdgeOutcomeCache      = "cache"
	EdgeOutcomeAPIOffline = "api_offline"
	EdgeOutcomeFallback   = "fallback"
)

// RecordEdgeRequest counts one intercepted request.
func RecordEdgeRequest(outcome string) {
	edgeRequestsTotal.WithLabelValues(outcome).Inc()
}
