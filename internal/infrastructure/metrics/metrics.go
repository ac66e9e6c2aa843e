// Package metrics contains Prometheus metrics of the bot and the scraper
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Audio delivery metrics
	HandleHits       prometheus.Counter
	Uploads          prometheus.Counter
	UploadDuration   prometheus.Histogram
	Fallbacks        *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec

	// Show command metrics
	Shows        *prometheus.CounterVec
	ShowAttempts prometheus.Histogram

	// Scraper metrics
	Ingested       prometheus.Counter
	IngestFailures *prometheus.CounterVec
	ScrapeRuns     prometheus.Counter
	ScrapeDuration prometheus.Histogram
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics registers all collectors with the default registry
func NewMetrics() *Metrics {
	return &Metrics{
		HandleHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "franky_audio_handle_hits_total",
			Help: "Audio messages delivered by a stored file id",
		}),
		Uploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "franky_audio_uploads_total",
			Help: "Audio files uploaded to Telegram",
		}),
		UploadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "franky_audio_upload_duration_seconds",
			Help:    "Duration of audio uploads",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		Fallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "franky_audio_fallbacks_total",
				Help: "Deliveries that fell back to uploading the file",
			},
			[]string{"reason"},
		),
		DeliveryFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "franky_audio_delivery_failures_total",
				Help: "Abandoned delivery attempts",
			},
			[]string{"reason"},
		),
		Shows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "franky_show_requests_total",
				Help: "Show requests by outcome",
			},
			[]string{"outcome"},
		),
		ShowAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "franky_show_attempts",
			Help:    "Broadcasts tried per show request",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		}),
		Ingested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "franky_scraper_ingested_total",
			Help: "Broadcasts added to the catalog",
		}),
		IngestFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "franky_scraper_failures_total",
				Help: "Links that could not be ingested",
			},
			[]string{"reason"},
		),
		ScrapeRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "franky_scraper_runs_total",
			Help: "Completed scraper runs",
		}),
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "franky_scraper_run_duration_seconds",
			Help:    "Duration of scraper runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// RecordHandleHit records a delivery by file id
func (m *Metrics) RecordHandleHit() {
	m.HandleHits.Inc()
}

// RecordUpload records a successful upload
func (m *Metrics) RecordUpload(duration time.Duration) {
	m.Uploads.Inc()
	m.UploadDuration.Observe(duration.Seconds())
}

// RecordFallback records a fallback to upload
func (m *Metrics) RecordFallback(reason string) {
	m.Fallbacks.WithLabelValues(labelOrUnknown(reason)).Inc()
}

// RecordFailure records an abandoned delivery attempt
func (m *Metrics) RecordFailure(reason string) {
	m.DeliveryFailures.WithLabelValues(labelOrUnknown(reason)).Inc()
}

// RecordShow records the outcome of a show request
func (m *Metrics) RecordShow(outcome string, attempts int) {
	m.Shows.WithLabelValues(labelOrUnknown(outcome)).Inc()
	if attempts >= 0 {
		m.ShowAttempts.Observe(float64(attempts))
	}
}

// RecordIngested records a new catalog entry
func (m *Metrics) RecordIngested() {
	m.Ingested.Inc()
}

// RecordIngestFailure records a link that could not be ingested
func (m *Metrics) RecordIngestFailure(reason string) {
	m.IngestFailures.WithLabelValues(labelOrUnknown(reason)).Inc()
}

// RecordScrapeRun records a finished scraper run
func (m *Metrics) RecordScrapeRun(duration time.Duration) {
	m.ScrapeRuns.Inc()
	m.ScrapeDuration.Observe(duration.Seconds())
}

func labelOrUnknown(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
