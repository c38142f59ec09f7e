// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote browsing metrics
var (
	BrowsePagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stellar_library_browse_pages_total",
			Help: "Total number of remote browse pages received",
		},
		[]string{"result"}, // applied, stale
	)

	BrowseErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stellar_library_browse_errors_total",
			Help: "Total number of failed remote browse requests",
		},
	)

	BrowsePageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stellar_library_browse_page_duration_seconds",
			Help:    "Remote browse page request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RemoteSources = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stellar_library_remote_sources",
			Help: "Number of currently known remote media sources",
		},
	)

	SourcesEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stellar_library_sources_evicted_total",
			Help: "Total number of remote sources evicted as stale",
		},
	)
)

// Local index metrics
var (
	LocalSnapshotItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stellar_library_local_items",
			Help: "Number of items in the local snapshot by kind",
		},
		[]string{"kind"},
	)

	LocalQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stellar_library_local_query_errors_total",
			Help: "Total number of failed local collection queries",
		},
		[]string{"kind"},
	)
)

// Playback metrics
var (
	PlaybackRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stellar_library_playback_requests_total",
			Help: "Total number of content lists handed to the player",
		},
		[]string{"kind", "mode"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stellar_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stellar_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
