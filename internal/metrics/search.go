package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search outcome labels.
const (
	StatusOK            = "ok"
	StatusInvalid       = "invalid"
	StatusDegraded      = "degraded"
	StatusEmbeddingFail = "embedding_error"
	StatusError         = "error"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

var registerSearch sync.Once

// RegisterSearchMetrics registers search metrics with the default registry. Safe to call repeatedly.
func RegisterSearchMetrics() {
	registerSearch.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchResults)
	})
}

// ObserveSearch records one search outcome.
func ObserveSearch(status string, elapsed time.Duration, results int) {
	SearchRequestsTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(elapsed.Seconds())
	if status == StatusOK || status == StatusDegraded {
		SearchResults.Observe(float64(results))
	}
}
