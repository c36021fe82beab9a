package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchPages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_fetch_pages_total",
		Help: "Total pages fetched by strategy",
	}, []string{"strategy"})

	fetchRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_fetch_records_total",
		Help: "Total records returned by completed fetches by strategy",
	}, []string{"strategy"})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biodiv_fetch_failures_total",
		Help: "Total fetches aborted by a page error by strategy",
	}, []string{"strategy"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biodiv_fetch_duration_seconds",
		Help:    "Duration of complete paged fetches by strategy",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"strategy"})

	fetchInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "biodiv_fetch_inflight_pages",
		Help: "Page requests currently in flight from concurrent fetches",
	})
)
