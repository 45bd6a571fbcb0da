package metrics

import (
	"go-commerce-ledger/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	ReservationsTotal     *prometheus.CounterVec
	CreditOperationsTotal *prometheus.CounterVec
	LowStockProducts      prometheus.Gauge
)

// Init registers all metrics. Call once at startup.
func Init(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_reservations_total",
			Help: "Stock reservation attempts by outcome",
		},
		[]string{"outcome"},
	)

	CreditOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_credit_operations_total",
			Help: "Credit ledger operations by type and outcome",
		},
		[]string{"operation", "outcome"},
	)

	LowStockProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_low_stock_products",
			Help: "Number of products at or below their reorder point",
		},
	)
}

// RecordReservation increments the reservation counter if metrics are initialized.
func RecordReservation(outcome string) {
	if ReservationsTotal != nil {
		ReservationsTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordCreditOperation increments the credit operation counter if metrics are initialized.
func RecordCreditOperation(operation, outcome string) {
	if CreditOperationsTotal != nil {
		CreditOperationsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
