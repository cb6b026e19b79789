package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. It implements
// easypost.Recorder for per-call API metrics.
type Metrics struct {
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrors          *prometheus.CounterVec

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewMetrics creates metrics registered with reg, or with the default
// registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easypost_api_requests_total",
				Help: "EasyPost API calls by method, endpoint template and HTTP status (0 when no response)",
			},
			[]string{"method", "endpoint", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "easypost_api_request_duration_seconds",
				Help:    "EasyPost API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easypost_api_errors_total",
				Help: "EasyPost API failures by error code",
			},
			[]string{"code"},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easypost_bridge_operations_total",
				Help: "Bridge operations by operation, carrier and outcome",
			},
			[]string{"operation", "carrier", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "easypost_bridge_operation_duration_seconds",
				Help:    "Bridge operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
	}
}

// RecordRequest records one EasyPost API call.
func (m *Metrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordError records a failed EasyPost API call by error code.
func (m *Metrics) RecordError(code string) {
	m.APIErrors.WithLabelValues(code).Inc()
}

// RecordOperation records a bridge operation. status is "success" or an error code.
func (m *Metrics) RecordOperation(operation, carrier, status string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.OperationDuration.WithLabelValues(operation, carrier).Observe(duration.Seconds())
}
