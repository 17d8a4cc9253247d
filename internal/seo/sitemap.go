package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/celnetamit/hlwp/internal/domain"
)

// Change frequencies understood by sitemap consumers.
const (
	ChangeHourly  = "hourly"
	ChangeDaily   = "daily"
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
	ChangeYearly  = "yearly"
)

// MaxSitemapEntries is the sitemaps.org per-file URL limit.
const MaxSitemapEntries = 50000

// staticPagesModified is the fixed last-modified date of the static pages.
var staticPagesModified = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SitemapEntry is one <url> of a sitemap.
type SitemapEntry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        float64
}

// BaseRoutes returns the entries of the site's fixed pages.
func BaseRoutes(siteURL string, now time.Time) []SitemapEntry {
	return []SitemapEntry{
		{URL: siteURL, LastModified: now, ChangeFrequency: ChangeDaily, Priority: 1.0},
		{URL: siteURL + "/journals", LastModified: now, ChangeFrequency: ChangeHourly, Priority: 0.9},
		{URL: siteURL + "/articles", LastModified: now, ChangeFrequency: ChangeWeekly, Priority: 0.85},
		{URL: siteURL + "/search", LastModified: now, ChangeFrequency: ChangeWeekly, Priority: 0.8},
		{URL: siteURL + "/about", LastModified: staticPagesModified, ChangeFrequency: ChangeMonthly, Priority: 0.5},
		{URL: siteURL + "/contact", LastModified: staticPagesModified, ChangeFrequency: ChangeMonthly, Priority: 0.5},
		{URL: siteURL + "/privacy-policy", LastModified: staticPagesModified, ChangeFrequency: ChangeYearly, Priority: 0.3},
		{URL: siteURL + "/terms-of-service", LastModified: staticPagesModified, ChangeFrequency: ChangeYearly, Priority: 0.3},
	}
}

// lastModified is the post's modification date, falling back to its
// publication date and then to now.
func lastModified(a *domain.Article, now time.Time) time.Time {
	switch {
	case !a.Modified.IsZero():
		return a.Modified
	case !a.PublishedDate.IsZero():
		return a.PublishedDate
	default:
		return now
	}
}

// freshness maps the age of a page to its priority and change frequency.
func freshness(last, now time.Time) (float64, string) {
	days := int(now.Sub(last).Hours() / 24)

	var priority float64
	switch {
	case days < 7:
		priority = 0.95
	case days < 30:
		priority = 0.9
	case days < 90:
		priority = 0.85
	default:
		priority = 0.8
	}

	var freq string
	switch {
	case days < 7:
		freq = ChangeDaily
	case days < 180:
		freq = ChangeWeekly
	default:
		freq = ChangeMonthly
	}
	return priority, freq
}

// PostRoutes returns the journal page entries followed by the article page
// entries of backend posts.
func PostRoutes(siteURL string, posts []domain.Article, now time.Time) []SitemapEntry {
	site := Site{URL: siteURL}
	entries := make([]SitemapEntry, 0, 2*len(posts))
	for i := range posts {
		p := &posts[i]
		last := lastModified(p, now)
		priority, freq := freshness(last, now)
		entries = append(entries, SitemapEntry{
			URL:             site.JournalURL(p.Slug),
			LastModified:    last,
			ChangeFrequency: freq,
			Priority:        priority,
		})
	}
	for i := range posts {
		p := &posts[i]
		entries = append(entries, articleEntry(site, p, now))
	}
	return entries
}

// CatalogRoutes returns one article page entry per catalog article.
func CatalogRoutes(siteURL string, articles []*domain.Article, now time.Time) []SitemapEntry {
	site := Site{URL: siteURL}
	entries := make([]SitemapEntry, 0, len(articles))
	for _, a := range articles {
		entries = append(entries, articleEntry(site, a, now))
	}
	return entries
}

func articleEntry(site Site, a *domain.Article, now time.Time) SitemapEntry {
	return SitemapEntry{
		URL:             site.ArticleURL(a.ID),
		LastModified:    lastModified(a, now),
		ChangeFrequency: ChangeMonthly,
		Priority:        0.7,
	}
}

// BuildSitemap merges entry groups in order, drops repeated URLs (first one
// wins), sorts by priority descending keeping insertion order for ties and
// caps the result at MaxSitemapEntries.
func BuildSitemap(groups ...[]SitemapEntry) []SitemapEntry {
	seen := make(map[string]bool)
	var all []SitemapEntry
	for _, g := range groups {
		for _, e := range g {
			if seen[e.URL] {
				continue
			}
			seen[e.URL] = true
			all = append(all, e)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority > all[j].Priority
	})
	if len(all) > MaxSitemapEntries {
		all = all[:MaxSitemapEntries]
	}
	return all
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []urlXML `xml:"url"`
}

type urlXML struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// WriteSitemap encodes entries as a sitemaps.org 0.9 document.
func WriteSitemap(w io.Writer, entries []SitemapEntry) error {
	doc := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlXML, len(entries)),
	}
	for i, e := range entries {
		u := urlXML{
			Loc:        e.URL,
			ChangeFreq: e.ChangeFrequency,
			Priority:   strconv.FormatFloat(e.Priority, 'f', -1, 64),
		}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}
		doc.URLs[i] = u
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write sitemap header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Close()
}
