package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// GalleryOperationsTotal counts store client calls by operation and outcome.
	GalleryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_operations_total",
			Help: "Gallery store operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	GalleryOrphansMarked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_orphans_marked_total",
			Help: "Object keys recorded as possible orphans after a partial failure",
		},
	)

	GallerySweepRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_sweep_removed_total",
			Help: "Unreferenced objects removed by the reconciliation sweep",
		},
	)

	GalleryUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_upload_bytes",
			Help:    "Size of uploaded images",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 7),
		},
	)
)
