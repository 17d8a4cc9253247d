// Package seo projects articles and journals into the machine-readable
// artefacts search engines and reference managers consume: scholarly meta
// tags, JSON-LD, sitemaps, RSS and robots.txt.
//
// Every function here is a pure projection. Presentation defaults (such as
// "Unknown Author") are applied here and never written back to records.
package seo

import (
	"strconv"
	"strings"

	"github.com/celnetamit/hlwp/internal/domain"
)

// UnknownAuthor stands in for an empty author list.
const UnknownAuthor = "Unknown Author"

// DefaultPublisher is the publisher printed in long-form citations when an
// article names none.
const DefaultPublisher = "STM Journals"

// Site identifies the public site the artefacts are generated for.
type Site struct {
	// URL is the absolute site root without a trailing slash.
	URL         string
	Name        string
	Description string
	FeedTitle   string
}

// ArticleURL returns the canonical page URL of an article id.
func (s Site) ArticleURL(id string) string {
	return s.URL + "/article/" + id
}

// JournalURL returns the page URL of a journal slug.
func (s Site) JournalURL(slug string) string {
	return s.URL + "/journal/" + slug
}

// AuthorList joins authors for display.
func AuthorList(authors []string) string {
	if len(authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(authors, ", ")
}

// Year returns the explicit year of a, or the year of its publication date,
// or "" when neither is known.
func Year(a *domain.Article) string {
	if a.Year != "" {
		return a.Year
	}
	if !a.PublishedDate.IsZero() {
		return strconv.Itoa(a.PublishedDate.Year())
	}
	return ""
}

// CitationString returns the short citation used by the API:
// "{authors} ({year}). {title}. {publisher}."
func CitationString(a *domain.Article, siteName string) string {
	publisher := a.Publisher
	if publisher == "" {
		publisher = siteName
	}
	return AuthorList(a.Authors) + " (" + Year(a) + "). " + a.PlainTitle() + ". " + publisher + "."
}

// FormattedCitation returns the "How to cite" form shown on article pages.
func FormattedCitation(a *domain.Article) string {
	publisher := a.Publisher
	if publisher == "" {
		publisher = DefaultPublisher
	}

	var b strings.Builder
	b.WriteString(AuthorList(a.Authors))
	b.WriteString(". (")
	b.WriteString(Year(a))
	b.WriteString("). ")
	b.WriteString(a.PlainTitle())
	b.WriteString(". ")
	b.WriteString(publisher)
	if a.Volume != "" {
		b.WriteString(", " + a.Volume)
	}
	if a.Issue != "" {
		b.WriteString("(" + a.Issue + ")")
	}
	if a.Pages != "" {
		b.WriteString(", " + a.Pages)
	}
	b.WriteString(".")
	if a.DOI != "" {
		b.WriteString(" https://doi.org/" + a.DOI)
	}
	return b.String()
}

// Description returns the plain-text summary used for meta descriptions:
// the excerpt (or abstract) stripped of markup and cut to n runes.
func Description(a *domain.Article, n int) string {
	src := a.Excerpt
	if src == "" {
		src = a.Abstract
	}
	return domain.Truncate(domain.PlainText(src), n)
}

// PageRange splits "123-138" into its first and last page.
func PageRange(pages string) (first, last string) {
	first, last, _ = strings.Cut(pages, "-")
	return strings.TrimSpace(first), strings.TrimSpace(last)
}
