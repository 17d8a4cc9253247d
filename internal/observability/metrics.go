package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the journal library service.
// Metrics are grouped by subsystem: search, content backend, catalog,
// page rendering and snapshot publishing. Everything is registered via
// promauto with the default Prometheus registry.
type Metrics struct {
	// SearchesTotal counts search requests, labeled by result type filter.
	SearchesTotal *prometheus.CounterVec

	// SearchesFailed counts searches that could not be served, labeled by reason.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes time spent scoring and ranking in seconds.
	SearchDuration prometheus.Histogram

	// SearchResults observes the number of matches (before pagination) per search.
	SearchResults prometheus.Histogram

	// ContentRequestsTotal counts requests to the content backend, labeled by source and endpoint.
	ContentRequestsTotal *prometheus.CounterVec

	// ContentRequestsFailed counts failed backend requests, labeled by source, endpoint and error type.
	ContentRequestsFailed *prometheus.CounterVec

	// ContentRequestDuration observes backend request duration in seconds.
	ContentRequestDuration *prometheus.HistogramVec

	// ContentRateLimited counts rate-limited responses from the backend, labeled by source.
	ContentRateLimited *prometheus.CounterVec

	// CatalogReloads counts catalog reload attempts, labeled by result (applied, stale, failed).
	CatalogReloads *prometheus.CounterVec

	// CatalogRecords reports the number of records in the current snapshot, labeled by kind.
	CatalogRecords *prometheus.GaugeVec

	// CatalogGeneration reports the generation of the current snapshot.
	CatalogGeneration prometheus.Gauge

	// PagesRendered counts rendered HTML pages and feeds, labeled by page kind.
	PagesRendered *prometheus.CounterVec

	// PublishUploads counts uploaded snapshot artifacts, labeled by artifact and result.
	PublishUploads *prometheus.CounterVec

	// PublishDuration observes the duration of a full publish run in seconds.
	PublishDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Search
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of search requests by result type",
		}, []string{"type"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Total number of searches that failed by reason",
		}, []string{"reason"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of search scoring and ranking in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		SearchResults: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of matching records per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
		}),

		// Content backend
		ContentRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_requests_total",
			Help:      "Total number of content backend requests by source and endpoint",
		}, []string{"source", "endpoint"}),
		ContentRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_requests_failed_total",
			Help:      "Total number of failed content backend requests",
		}, []string{"source", "endpoint", "error_type"}),
		ContentRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_request_duration_seconds",
			Help:      "Duration of content backend requests in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"source", "endpoint"}),
		ContentRateLimited: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_rate_limited_total",
			Help:      "Total number of rate-limited responses from the content backend",
		}, []string{"source"}),

		// Catalog
		CatalogReloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Total number of catalog reloads by result",
		}, []string{"result"}),
		CatalogRecords: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_records",
			Help:      "Number of records in the current catalog snapshot by kind",
		}, []string{"kind"}),
		CatalogGeneration: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_generation",
			Help:      "Generation number of the applied catalog snapshot",
		}),

		// Pages
		PagesRendered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Total number of rendered pages and feeds by kind",
		}, []string{"page"}),

		// Publishing
		PublishUploads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_uploads_total",
			Help:      "Total number of snapshot artifact uploads by artifact and result",
		}, []string{"artifact", "result"}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of snapshot publish runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
	}
}

// RecordSearch records a served search with its match count and duration.
func (m *Metrics) RecordSearch(recordType string, matches int, durationSeconds float64) {
	m.SearchesTotal.WithLabelValues(recordType).Inc()
	m.SearchResults.Observe(float64(matches))
	m.SearchDuration.Observe(durationSeconds)
}

// RecordSearchFailed records a search that could not be served.
func (m *Metrics) RecordSearchFailed(reason string) {
	m.SearchesFailed.WithLabelValues(reason).Inc()
}

// RecordContentRequest records a content backend request.
func (m *Metrics) RecordContentRequest(source, endpoint string, durationSeconds float64) {
	m.ContentRequestsTotal.WithLabelValues(source, endpoint).Inc()
	m.ContentRequestDuration.WithLabelValues(source, endpoint).Observe(durationSeconds)
}

// RecordContentRequestFailed records a failed content backend request.
func (m *Metrics) RecordContentRequestFailed(source, endpoint, errorType string) {
	m.ContentRequestsFailed.WithLabelValues(source, endpoint, errorType).Inc()
}

// RecordContentRateLimited records a rate-limited backend response.
func (m *Metrics) RecordContentRateLimited(source string) {
	m.ContentRateLimited.WithLabelValues(source).Inc()
}

// RecordCatalogReload records the outcome of a catalog reload. On an applied
// reload the generation and record gauges are updated.
func (m *Metrics) RecordCatalogReload(result string, generation uint64, journals, articles int) {
	m.CatalogReloads.WithLabelValues(result).Inc()
	if result != "applied" {
		return
	}
	m.CatalogGeneration.Set(float64(generation))
	m.CatalogRecords.WithLabelValues("journal").Set(float64(journals))
	m.CatalogRecords.WithLabelValues("article").Set(float64(articles))
}

// RecordPageRendered records a rendered page or feed.
func (m *Metrics) RecordPageRendered(page string) {
	m.PagesRendered.WithLabelValues(page).Inc()
}

// RecordPublishUpload records the upload of one snapshot artifact.
func (m *Metrics) RecordPublishUpload(artifact string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.PublishUploads.WithLabelValues(artifact, result).Inc()
}

// RecordPublishRun records the duration of a publish run.
func (m *Metrics) RecordPublishRun(durationSeconds float64) {
	m.PublishDuration.Observe(durationSeconds)
}
