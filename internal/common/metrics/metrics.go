// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	// ListingQueries counts browse queries by entry point and sort key.
	ListingQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_queries_total",
			Help: "Total number of listing browse queries",
		},
		[]string{"entry", "sort"},
	)

	ListingQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_query_duration_seconds",
			Help:    "Duration of listing load plus filter, sort and paginate",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entry"},
	)

	// ListingSourceFallbacks counts loads that served the demo dataset.
	ListingSourceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_source_fallbacks_total",
			Help: "Total number of listing loads that fell back to demo data",
		},
		[]string{"source"},
	)

	ListingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_hits_total",
			Help: "Listing detail cache lookups by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	ListingEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_events_published_total",
			Help: "Listing change events by type and publish outcome",
		},
		[]string{"type", "outcome"},
	)
)
