package catalog

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/projcat/internal/storage"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for catalog mutations.
type Metrics struct {
	MutationsTotal *prometheus.CounterVec
}

// NewMetrics registers the mutation metrics once per process.
//
// Metrics:
//   - projcat_mutations_total{op,result} - result is "ok", "invalid", "not_found" or "error"
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			MutationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projcat_mutations_total",
					Help: "Total number of catalog mutations by outcome",
				},
				[]string{"op", "result"},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) observe(op string, err error) {
	m.MutationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
