package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServerMetrics holds the rows API metrics.
type ServerMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RowsWritten     *prometheus.CounterVec
	RowsDeleted     *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// NewServerMetrics creates the server metrics and registers them with reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	factory := promauto.With(reg)

	return &ServerMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentkeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_rows_written_total",
				Help: "Rows upserted through the rows API",
			},
			[]string{"table"},
		),
		RowsDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentkeeper_rows_deleted_total",
				Help: "Rows deleted through the rows API",
			},
			[]string{"table"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rentkeeper_http_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
		),
	}
}
