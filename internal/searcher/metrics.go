package searcher

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query shapes used as metric labels
const (
	shapeSearch = "search"
	shapePage   = "page"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the query engine.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	ResultCount   *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewMetrics registers the query metrics once per process.
//
// Metrics:
//   - projcat_queries_total{shape}
//   - projcat_query_duration_seconds{shape}
//   - projcat_query_results{shape}
//   - projcat_query_cache_hits_total
//   - projcat_query_cache_misses_total
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			QueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projcat_queries_total",
					Help: "Total number of catalog queries",
				},
				[]string{"shape"}, // "search" or "page"
			),

			QueryDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "projcat_query_duration_seconds",
					Help:    "Duration of catalog queries in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"shape"},
			),

			ResultCount: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "projcat_query_results",
					Help:    "Number of projects returned per query",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
				[]string{"shape"},
			),

			CacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "projcat_query_cache_hits_total",
					Help: "Total number of query cache hits",
				},
			),

			CacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "projcat_query_cache_misses_total",
					Help: "Total number of query cache misses",
				},
			),
		}
	})
	return globalMetrics
}
