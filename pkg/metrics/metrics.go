package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// HTTP requests by route pattern, method and status code
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// Latency of HTTP handlers by route pattern
	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_http_request_duration_seconds",
		Help:    "Latency of HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Approval status changes by target status
	ModerationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_moderation_transitions_total",
		Help: "Product approval status changes",
	}, []string{"to"})

	// Products created, sold and deleted
	ProductLifecycle = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_product_events_total",
		Help: "Product lifecycle events",
	}, []string{"event"})
)

func Init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPLatency,
		ModerationTransitions,
		ProductLifecycle,
	)
}
