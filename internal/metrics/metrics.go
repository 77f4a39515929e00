package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes.
const (
	ResultSuccess         = "success"
	ResultValidationError = "validation_error"
	ResultInternalError   = "internal_error"
)

var (
	PackRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenancypack_requests_total",
			Help: "Tenancy pack requests by outcome",
		},
		[]string{"result"},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenancypack_build_duration_seconds",
			Help:    "Time spent rendering and archiving a tenancy pack",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	ArchiveBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenancypack_archive_bytes",
			Help:    "Size of generated tenancy pack archives",
			Buckets: prometheus.ExponentialBuckets(4096, 2, 10),
		},
	)

	ArchiveEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tenancypack_archive_entries",
			Help:    "Number of files in generated tenancy pack archives",
			Buckets: prometheus.LinearBuckets(4, 1, 6),
		},
	)
)

// ObserveBuild records a successful pack.
func ObserveBuild(elapsed time.Duration, size int64, entries int) {
	PackRequests.WithLabelValues(ResultSuccess).Inc()
	BuildDuration.Observe(elapsed.Seconds())
	ArchiveBytes.Observe(float64(size))
	ArchiveEntries.Observe(float64(entries))
}

// ObserveFailure records a rejected or failed request.
func ObserveFailure(result string) {
	PackRequests.WithLabelValues(result).Inc()
}
