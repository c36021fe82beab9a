package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_requests_total",
		Help: "Total API requests by service and status",
	}, []string{"service", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biodiv_request_duration_seconds",
		Help:    "API request duration in seconds by service",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"service"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "biodiv_circuit_breaker_state",
		Help: "Circuit breaker state by service (0=closed, 1=half-open, 2=open)",
	}, []string{"service"})
)
