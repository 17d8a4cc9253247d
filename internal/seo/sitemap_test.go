package seo

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/domain"
)

var sitemapNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func TestBaseRoutes(t *testing.T) {
	routes := BaseRoutes(testSite.URL, sitemapNow)
	require.Len(t, routes, 8)
	assert.Equal(t, testSite.URL, routes[0].URL)
	assert.Equal(t, 1.0, routes[0].Priority)
	assert.Equal(t, ChangeHourly, routes[1].ChangeFrequency)
	assert.Equal(t, staticPagesModified, routes[7].LastModified)
	assert.Equal(t, ChangeYearly, routes[7].ChangeFrequency)
}

func TestFreshness(t *testing.T) {
	tests := []struct {
		ageDays  int
		priority float64
		freq     string
	}{
		{0, 0.95, ChangeDaily},
		{6, 0.95, ChangeDaily},
		{7, 0.9, ChangeWeekly},
		{29, 0.9, ChangeWeekly},
		{30, 0.85, ChangeWeekly},
		{89, 0.85, ChangeWeekly},
		{90, 0.8, ChangeWeekly},
		{179, 0.8, ChangeWeekly},
		{180, 0.8, ChangeMonthly},
	}

	for _, tt := range tests {
		last := sitemapNow.Add(-time.Duration(tt.ageDays) * 24 * time.Hour)
		priority, freq := freshness(last, sitemapNow)
		assert.Equal(t, tt.priority, priority, "age %d", tt.ageDays)
		assert.Equal(t, tt.freq, freq, "age %d", tt.ageDays)
	}
}

func TestPostRoutes(t *testing.T) {
	posts := []domain.Article{
		{ID: "123", Slug: "fresh-post", Modified: sitemapNow.Add(-48 * time.Hour)},
		{ID: "124", Slug: "undated-post"},
	}

	routes := PostRoutes(testSite.URL, posts, sitemapNow)
	require.Len(t, routes, 4)

	assert.Equal(t, testSite.URL+"/journal/fresh-post", routes[0].URL)
	assert.Equal(t, 0.95, routes[0].Priority)
	assert.Equal(t, sitemapNow, routes[1].LastModified, "missing dates fall back to now")

	assert.Equal(t, testSite.URL+"/article/123", routes[2].URL)
	assert.Equal(t, 0.7, routes[2].Priority)
	assert.Equal(t, ChangeMonthly, routes[2].ChangeFrequency)
}

func TestBuildSitemap(t *testing.T) {
	base := BaseRoutes(testSite.URL, sitemapNow)
	posts := PostRoutes(testSite.URL, []domain.Article{{ID: "7", Slug: "seven", Modified: sitemapNow}}, sitemapNow)
	catalog := CatalogRoutes(testSite.URL, []*domain.Article{{ID: "7"}, {ID: "quantum"}}, sitemapNow)

	entries := BuildSitemap(base, posts, catalog)

	var urls []string
	for _, e := range entries {
		urls = append(urls, e.URL)
	}
	assert.Len(t, entries, 8+2+1, "duplicate article url dropped")
	assert.Equal(t, testSite.URL, urls[0])
	assert.Equal(t, testSite.URL+"/journal/seven", urls[1], "0.95 sorts right after the home page")

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Priority, entries[i].Priority)
	}
	// Equal priorities keep insertion order.
	idx7 := indexOf(urls, testSite.URL+"/article/7")
	idxQ := indexOf(urls, testSite.URL+"/article/quantum")
	assert.Less(t, idx7, idxQ)
}

func TestBuildSitemap_Cap(t *testing.T) {
	group := make([]SitemapEntry, MaxSitemapEntries+10)
	for i := range group {
		group[i] = SitemapEntry{URL: testSite.URL + "/article/" + strconv.Itoa(i)}
	}
	assert.Len(t, BuildSitemap(group), MaxSitemapEntries)
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSitemap(&buf, BuildSitemap(BaseRoutes(testSite.URL, sitemapNow)))
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<priority>1</priority>")
	assert.Contains(t, out, "<priority>0.85</priority>")
	assert.Contains(t, out, "<lastmod>2024-01-01T00:00:00Z</lastmod>")

	var doc urlSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.URLs, 8)
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
