// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LookupRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_requests_total",
			Help: "Total number of lookup requests per source",
		},
		[]string{"source"},
	)

	LookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_failures_total",
			Help: "Total number of lookups recovered as absence per source",
		},
		[]string{"source", "error_code"},
	)

	LookupCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_hits_total",
			Help: "Total number of lookups served from the cache",
		},
		[]string{"source"},
	)

	LookupsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lookups_active",
			Help: "Number of in-flight lookups per source",
		},
		[]string{"source"},
	)

	InferenceAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_attempts_total",
			Help: "Total number of inference attempts by outcome",
		},
		[]string{"outcome"},
	)

	ReportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_requests_total",
			Help: "Total number of report requests by status",
		},
		[]string{"status"},
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "report_duration_seconds",
			Help: "Duration of full report generation in seconds",
		},
		[]string{"status"},
	)
)
