// Package metrics provides Prometheus metrics for ausec.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Listing metrics
	listingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausec_listings_total",
			Help: "Total remote tree listings",
		},
		[]string{"status"},
	)

	listingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ausec_listing_entries",
			Help: "Number of entries in the most recent listing",
		},
	)

	listingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ausec_listing_duration_seconds",
			Help:    "Time to walk the remote tree",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Download metrics
	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausec_downloads_total",
			Help: "Total download requests by role and outcome",
		},
		[]string{"role", "status"},
	)

	downloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ausec_download_bytes_total",
			Help: "Total bytes transferred from the feed server",
		},
	)

	downloadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ausec_download_duration_seconds",
			Help:    "Transfer duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	// Extraction metrics
	extractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausec_extractions_total",
			Help: "Total archive member extractions",
		},
		[]string{"status"},
	)

	// Watch metrics
	sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ausec_sessions_total",
			Help: "Total load sessions run",
		},
		[]string{"status"},
	)

	resultsChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ausec_results_changes_total",
			Help: "Number of times a newer results bundle was observed",
		},
	)

	lastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ausec_last_success_timestamp_seconds",
			Help: "Unix time of the last successful load session",
		},
	)
)

// Outcome labels.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusCached = "cached"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordListing records one remote tree walk.
func RecordListing(entries int, duration time.Duration, err error) {
	listingsTotal.WithLabelValues(status(err)).Inc()
	listingDuration.Observe(duration.Seconds())
	if err == nil {
		listingEntries.Set(float64(entries))
	}
}

// RecordCacheHit records a download request served from the local cache.
func RecordCacheHit(role string) {
	downloadsTotal.WithLabelValues(role, StatusCached).Inc()
}

// RecordDownload records a transfer from the feed server.
func RecordDownload(role string, bytes int64, duration time.Duration, err error) {
	downloadsTotal.WithLabelValues(role, status(err)).Inc()
	downloadDuration.WithLabelValues(role).Observe(duration.Seconds())
	if err == nil {
		downloadBytes.Add(float64(bytes))
	}
}

// RecordExtraction records one archive member read.
func RecordExtraction(err error) {
	extractionsTotal.WithLabelValues(status(err)).Inc()
}

// RecordSession records a complete load session.
func RecordSession(err error) {
	sessionsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		lastSuccess.SetToCurrentTime()
	}
}

// RecordResultsChange records that a newer results bundle was selected.
func RecordResultsChange() {
	resultsChangesTotal.Inc()
}
