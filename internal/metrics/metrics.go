// Package metrics defines Prometheus metrics for dealscout.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dealscout"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness probe succeeded, 0 otherwise.",
	})
)

// Ingestion metrics.
var (
	IngestListingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_listings_total",
		Help:      "Total number of raw listings received.",
	})

	IngestDuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_duplicates_total",
		Help:      "Total number of listings skipped as duplicates.",
	})

	IngestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_errors_total",
		Help:      "Total number of listings that failed ingestion.",
	})
)

// Pipeline metrics.
var (
	PipelineRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_run_duration_seconds",
		Help:      "Duration of full pipeline runs in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	PipelineRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs started.",
	})

	PipelineDeviceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_device_errors_total",
		Help:      "Total number of devices skipped by a stage due to errors.",
	})
)

// Grading metrics.
var (
	GradedDevicesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graded_devices_total",
		Help:      "Total number of devices graded, by resulting grade.",
	}, []string{"grade"})

	BlacklistedDevicesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blacklisted_devices_total",
		Help:      "Total number of devices auto-rejected by blacklist keywords.",
	})
)

// Matching metrics.
var (
	MatchConfidenceDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_confidence_distribution",
		Help:      "Distribution of catalog match confidence scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, 20, ..., 100
	})

	MatchMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_misses_total",
		Help:      "Total number of devices with no usable catalog match.",
	})
)

// Classification metrics.
var (
	ClassifiedDevicesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classified_devices_total",
		Help:      "Total number of devices classified, by deal class.",
	}, []string{"class"})

	RiskScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "risk_score_distribution",
		Help:      "Distribution of computed risk scores.",
		Buckets:   prometheus.LinearBuckets(1, 1, 10), // 1 through 10
	})
)

// Verdict metrics.
var (
	VerdictEntriesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "verdict_entries",
		Help:      "Number of entries in the current ranked worklist.",
	})

	HotSellersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hot_sellers",
		Help:      "Number of hot sellers detected in the latest run.",
	})
)

// Outreach metrics.
var (
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of outreach notifications dispatched.",
	})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})
)
