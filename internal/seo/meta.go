package seo

import (
	"strings"
	"time"

	"github.com/celnetamit/hlwp/internal/domain"
)

// descriptionLength bounds meta and Open Graph descriptions.
const descriptionLength = 160

// MetaTag is one <meta> element. Property selects the property attribute
// (Open Graph) instead of name.
type MetaTag struct {
	Name     string
	Content  string
	Property bool
}

type metaList []MetaTag

func (m *metaList) add(name, content string) {
	if content = strings.TrimSpace(content); content != "" {
		*m = append(*m, MetaTag{Name: name, Content: content})
	}
}

func (m *metaList) prop(name, content string) {
	if content = strings.TrimSpace(content); content != "" {
		*m = append(*m, MetaTag{Name: name, Content: content, Property: true})
	}
}

// publicationDate is the explicit year when given, otherwise the
// publication date as YYYY-MM-DD.
func publicationDate(a *domain.Article) string {
	if a.Year != "" {
		return a.Year
	}
	if a.PublishedDate.IsZero() {
		return ""
	}
	return a.PublishedDate.UTC().Format(time.DateOnly)
}

func language(a *domain.Article) string {
	if a.Language != "" {
		return a.Language
	}
	return "en"
}

// ArticleMeta returns the Google Scholar (citation_*), Dublin Core (dc.*),
// PRISM (prism.*), HighWire (hw.*), Open Graph and Twitter tags for an
// article rendered at pageURL. Tags with no value are left out.
func ArticleMeta(a *domain.Article, pageURL string, site Site) []MetaTag {
	title := a.PlainTitle()
	desc := Description(a, descriptionLength)
	date := publicationDate(a)
	publisher := a.Publisher
	if publisher == "" {
		publisher = site.Name
	}
	journal := a.JournalTitle
	if journal == "" {
		journal = publisher
	}
	first, last := PageRange(a.Pages)
	keywords := strings.Join(a.Keywords, ", ")
	identifier := pageURL
	if a.DOI != "" {
		identifier = a.DOI
	}

	var m metaList
	m.add("description", desc)

	m.add("citation_title", title)
	for _, author := range a.Authors {
		m.add("citation_author", author)
	}
	m.add("citation_publication_date", date)
	m.add("citation_journal_title", journal)
	m.add("citation_publisher", publisher)
	m.add("citation_firstpage", first)
	m.add("citation_lastpage", last)
	m.add("citation_volume", a.Volume)
	m.add("citation_issue", a.Issue)
	m.add("citation_doi", a.DOI)
	m.add("citation_issn", a.ISSN)
	m.add("citation_pdf_url", a.PDFURL)
	m.add("citation_abstract_html_url", pageURL)
	m.add("citation_fulltext_html_url", pageURL)
	m.add("citation_keywords", keywords)
	m.add("citation_language", language(a))

	m.add("dc.title", title)
	for _, author := range a.Authors {
		m.add("dc.creator", author)
	}
	m.add("dc.publisher", publisher)
	m.add("dc.date", date)
	m.add("dc.type", "Text")
	m.add("dc.format", "text/html")
	m.add("dc.language", language(a))
	m.add("dc.identifier", identifier)
	m.add("dc.description", desc)
	m.add("dc.subject", keywords)

	m.add("prism.publicationName", journal)
	m.add("prism.publicationDate", date)
	m.add("prism.volume", a.Volume)
	m.add("prism.number", a.Issue)
	m.add("prism.startingPage", first)
	m.add("prism.endingPage", last)
	m.add("prism.doi", a.DOI)

	m.add("hw.title", title)
	m.add("hw.author", AuthorList(a.Authors))
	m.add("hw.journal", journal)
	m.add("hw.volume", a.Volume)
	m.add("hw.issue", a.Issue)
	m.add("hw.spage", first)
	m.add("hw.epage", last)
	m.add("hw.year", Year(a))
	m.add("hw.doi", a.DOI)

	m.prop("og:title", title)
	m.prop("og:description", desc)
	m.prop("og:type", "article")
	m.prop("og:url", pageURL)
	m.prop("og:site_name", site.Name)
	m.prop("og:image", a.ImageURL)
	if !a.PublishedDate.IsZero() {
		m.prop("article:published_time", a.PublishedDate.UTC().Format(time.RFC3339))
	}
	if !a.Modified.IsZero() {
		m.prop("article:modified_time", a.Modified.UTC().Format(time.RFC3339))
	}

	m.add("twitter:card", "summary_large_image")
	m.add("twitter:title", title)
	m.add("twitter:description", desc)
	m.add("twitter:image", a.ImageURL)

	return m
}

// CollectionMeta returns the tags of the article collection page.
func CollectionMeta(site Site, pageURL string) []MetaTag {
	title := site.Name + " - Article Collection"
	desc := "Comprehensive collection of peer-reviewed academic articles"

	var m metaList
	m.add("description", desc)
	m.add("citation_title", title)
	m.add("citation_author", site.Name+" Team")
	m.add("citation_journal_title", site.Name)
	m.add("citation_publisher", DefaultPublisher)
	m.add("citation_abstract_html_url", pageURL)
	m.add("citation_fulltext_html_url", pageURL)
	m.add("citation_language", "en")
	m.prop("og:title", title)
	m.prop("og:description", desc)
	m.prop("og:type", "website")
	m.prop("og:url", pageURL)
	m.prop("og:site_name", site.Name)
	m.add("twitter:card", "summary")
	m.add("twitter:title", title)
	return m
}
