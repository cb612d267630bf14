package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the HTTP surface.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP metrics once per process.
//
// Metrics:
//   - projcat_http_requests_total{method,route,status}
//   - projcat_http_request_duration_seconds{method,route}
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "projcat_http_requests_total",
					Help: "Total HTTP requests by method, route and status code",
				},
				[]string{"method", "route", "status"},
			),

			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "projcat_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
				},
				[]string{"method", "route"},
			),
		}
	})
	return globalMetrics
}

// metricsMiddleware records every request under its route pattern, so
// /api/projects/7 and /api/projects/8 share one series.
func metricsMiddleware(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
