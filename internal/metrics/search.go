package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fallback reasons.
const (
	FallbackUnsupported = "unsupported"
	FallbackUnderfilled = "underfilled"
)

// Rerank outcomes.
const (
	RerankApplied = "applied"
	RerankSkipped = "skipped"
	RerankTrivial = "trivial"
)

// Search pipeline Prometheus metrics.
var (
	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fallback_total",
			Help:      "Pattern fallback runs by reason",
		},
		[]string{"reason"},
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_total",
			Help:      "Semantic rerank attempts by outcome",
		},
		[]string{"result"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of documents returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(RerankTotal)
	prometheus.MustRegister(SearchResults)
	searchMetricsRegistered = true
}
