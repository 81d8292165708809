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

	// VenueMatches counts matching runs by outcome: matched, no_venues.
	VenueMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venue_matches_total",
			Help: "Venue matching runs by outcome",
		},
		[]string{"outcome"},
	)

	VenueMatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "venue_match_score",
			Help:    "Score of the best venue match",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// QuoteClaims counts claim attempts by result: won, lost, error.
	QuoteClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_claims_total",
			Help: "Quote claim attempts by result",
		},
		[]string{"result"},
	)

	Callbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callbacks_total",
			Help: "Reviewer button callbacks by action and result",
		},
		[]string{"action", "result"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Outbound notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	CatalogCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venue_catalog_cache_total",
			Help: "Venue catalog cache lookups by result: hit, miss, error",
		},
		[]string{"result"},
	)
)
