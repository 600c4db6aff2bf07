// Package metrics holds the Prometheus instruments for providers, caching,
// retrieval, and the HTTP surface.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ProviderRequestsTotal counts discovery provider attempts.
	// status: success, error, timeout, circuit_open.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confradar",
			Name:      "provider_requests_total",
			Help:      "Total discovery provider attempts",
		},
		[]string{"provider", "status"},
	)

	// ProviderRequestDuration observes per-attempt provider latency.
	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "confradar",
			Name:      "provider_request_duration_seconds",
			Help:      "Discovery provider attempt duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	// CircuitStateChanges counts breaker transitions per provider.
	CircuitStateChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confradar",
			Name:      "provider_circuit_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"provider", "to"},
	)

	// CacheOpsTotal counts cache reads per kind. result: hit, miss, stale.
	CacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confradar",
			Name:      "cache_ops_total",
			Help:      "Cache reads by kind and outcome",
		},
		[]string{"kind", "result"},
	)

	// SearchDuration observes end-to-end hybrid search latency.
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "confradar",
			Name:      "search_duration_seconds",
			Help:      "Hybrid search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"intent", "cached"},
	)

	// RerankFallbacksTotal counts rerank calls that fell back to hybrid ordering.
	RerankFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "confradar",
			Name:      "rerank_fallbacks_total",
			Help:      "Rerank calls that used the deterministic fallback ordering",
		},
	)
)

var registered bool

// Register registers all confradar metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		CircuitStateChanges,
		CacheOpsTotal,
		SearchDuration,
		RerankFallbacksTotal,
	)
	registered = true
}
