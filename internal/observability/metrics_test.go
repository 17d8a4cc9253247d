package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Note: prometheus/promauto registers metrics globally, so we need to use
// unique namespaces per test to avoid registration conflicts.

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_journal_library_new")

	assert.NotNil(t, m.SearchesTotal)
	assert.NotNil(t, m.SearchesFailed)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.SearchResults)
	assert.NotNil(t, m.ContentRequestsTotal)
	assert.NotNil(t, m.ContentRequestsFailed)
	assert.NotNil(t, m.ContentRequestDuration)
	assert.NotNil(t, m.CatalogReloads)
	assert.NotNil(t, m.CatalogRecords)
	assert.NotNil(t, m.PagesRendered)
	assert.NotNil(t, m.PublishUploads)
}

func TestRecordSearch(t *testing.T) {
	m := NewMetrics("test_record_search")

	m.RecordSearch("article", 3, 0.002)
	m.RecordSearch("article", 0, 0.001)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SearchesTotal.WithLabelValues("article")))

	count, err := getHistogramSampleCount(m.SearchResults)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	count, err = getHistogramSampleCount(m.SearchDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRecordSearchFailed(t *testing.T) {
	m := NewMetrics("test_record_search_failed")

	m.RecordSearchFailed("catalog_unavailable")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesFailed.WithLabelValues("catalog_unavailable")))
}

func TestRecordContentRequest(t *testing.T) {
	m := NewMetrics("test_record_content_request")

	m.RecordContentRequest("wordpress", "posts", 0.25)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContentRequestsTotal.WithLabelValues("wordpress", "posts")))

	m.RecordContentRequestFailed("wordpress", "posts", "status_500")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContentRequestsFailed.WithLabelValues("wordpress", "posts", "status_500")))

	m.RecordContentRateLimited("wordpress")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ContentRateLimited.WithLabelValues("wordpress")))
}

func TestRecordCatalogReload(t *testing.T) {
	m := NewMetrics("test_record_catalog_reload")

	m.RecordCatalogReload("applied", 3, 2, 5)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogReloads.WithLabelValues("applied")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CatalogGeneration))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CatalogRecords.WithLabelValues("journal")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.CatalogRecords.WithLabelValues("article")))

	// Stale reloads must not move the gauges.
	m.RecordCatalogReload("stale", 2, 9, 9)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CatalogReloads.WithLabelValues("stale")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CatalogGeneration))
}

func TestRecordPublishUpload(t *testing.T) {
	m := NewMetrics("test_record_publish_upload")

	m.RecordPublishUpload("sitemap.xml", true)
	m.RecordPublishUpload("feed.xml", false)
	m.RecordPublishRun(1.2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishUploads.WithLabelValues("sitemap.xml", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishUploads.WithLabelValues("feed.xml", "failure")))

	count, err := getHistogramSampleCount(m.PublishDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestRecordPageRendered(t *testing.T) {
	m := NewMetrics("test_record_page_rendered")

	m.RecordPageRendered("article")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PagesRendered.WithLabelValues("article")))
}

// Helper to get histogram sample count
func getHistogramSampleCount(h prometheus.Histogram) (uint64, error) {
	ch := make(chan prometheus.Metric, 1)
	h.Collect(ch)
	close(ch)

	var m prometheus.Metric
	for m = range ch {
		break
	}

	var dto = &dto.Metric{}
	if err := m.Write(dto); err != nil {
		return 0, err
	}

	return dto.Histogram.GetSampleCount(), nil
}
