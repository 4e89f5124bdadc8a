package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for request traffic and parcel/payment activity.
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ParcelsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parcels_created_total",
			Help: "Total number of parcels created",
		},
	)

	ParcelsPaidTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parcels_paid_total",
			Help: "Total number of parcels marked paid",
		},
	)

	PaymentIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Payment intent creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	PaymentHistoryRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_history_records_total",
			Help: "Total number of payment history records saved",
		},
	)
)

var registerOnce sync.Once

// Register registers all metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(ParcelsCreatedTotal)
		prometheus.MustRegister(ParcelsPaidTotal)
		prometheus.MustRegister(PaymentIntentsTotal)
		prometheus.MustRegister(PaymentHistoryRecordsTotal)
	})
}
