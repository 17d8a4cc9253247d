package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/seo"
)

// Head is the <head> content shared by every page.
type Head struct {
	Title     string
	Canonical string
	Meta      []seo.MetaTag
	JSONLD    []template.JS
}

// ArticlePage is the data of an article or journal detail page.
type ArticlePage struct {
	Site seo.Site
	Head Head

	Title        string
	Authors      string
	JournalTitle string
	Published    time.Time
	Year         string
	DOI          string
	Volume       string
	Issue        string
	Pages        string
	PDFURL       string
	Citations    int
	Keywords     []string
	Subjects     []string
	Abstract     string
	Body         template.HTML
	TOC          []Heading
	References   []string
	Citation     string
	Crumbs       []seo.Crumb
}

// CollectionItem is one row of the article collection page.
type CollectionItem struct {
	URL       string
	Title     string
	Authors   string
	Journal   string
	Published time.Time
	Abstract  string
}

// CollectionPage is the data of the article collection page.
type CollectionPage struct {
	Site  seo.Site
	Head  Head
	Items []CollectionItem
}

// NotFoundPage is the data of the not-found page.
type NotFoundPage struct {
	Site    seo.Site
	Head    Head
	Message string
}

// abstractLength bounds abstracts on the collection page.
const abstractLength = 300

// jsonLD encodes v for a <script type="application/ld+json"> block. The
// encoder escapes <, > and & so the output cannot close the script early.
func jsonLD(vs ...any) ([]template.JS, error) {
	out := make([]template.JS, 0, len(vs))
	for _, v := range vs {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode json-ld: %w", err)
		}
		out = append(out, template.JS(b))
	}
	return out, nil
}

// body picks the richest available article body: Markdown full text, then
// backend HTML. An empty body leaves the page with its abstract only.
func body(a *domain.Article, md *MarkdownRenderer) (template.HTML, []Heading, error) {
	switch {
	case a.FullText != "":
		res, err := md.Render([]byte(a.FullText))
		if err != nil {
			return "", nil, err
		}
		return template.HTML(res.HTML), res.Headings, nil
	case a.Content != "":
		// Backend content is authored in the CMS and rendered as-is.
		return template.HTML(a.Content), nil, nil
	default:
		return "", nil, nil
	}
}

func articlePage(site seo.Site, a *domain.Article, pageURL string, md *MarkdownRenderer, extraLD ...any) (ArticlePage, error) {
	html, toc, err := body(a, md)
	if err != nil {
		return ArticlePage{}, err
	}
	ld, err := jsonLD(append([]any{seo.ArticleJSONLD(a, pageURL, site)}, extraLD...)...)
	if err != nil {
		return ArticlePage{}, err
	}

	title := a.PlainTitle()
	return ArticlePage{
		Site: site,
		Head: Head{
			Title:     title + " | " + site.Name,
			Canonical: pageURL,
			Meta:      seo.ArticleMeta(a, pageURL, site),
			JSONLD:    ld,
		},
		Title:        title,
		Authors:      seo.AuthorList(a.Authors),
		JournalTitle: a.JournalTitle,
		Published:    a.PublishedDate,
		Year:         seo.Year(a),
		DOI:          a.DOI,
		Volume:       a.Volume,
		Issue:        a.Issue,
		Pages:        a.Pages,
		PDFURL:       a.PDFURL,
		Citations:    a.Citations,
		Keywords:     a.Keywords,
		Subjects:     a.Subjects,
		Abstract:     domain.PlainText(a.Abstract),
		Body:         html,
		TOC:          toc,
		References:   a.References,
		Citation:     seo.FormattedCitation(a),
	}, nil
}

// NewArticlePage builds the /article/{id} page of a.
func NewArticlePage(site seo.Site, a *domain.Article, md *MarkdownRenderer) (ArticlePage, error) {
	return articlePage(site, a, site.ArticleURL(a.ID), md)
}

// NewJournalPage builds the /journal/{slug} page of a backend post.
func NewJournalPage(site seo.Site, a *domain.Article, md *MarkdownRenderer) (ArticlePage, error) {
	crumbs := seo.JournalBreadcrumbs(site, a.Slug)
	page, err := articlePage(site, a, site.JournalURL(a.Slug), md, crumbs)
	if err != nil {
		return ArticlePage{}, err
	}
	page.Crumbs = []seo.Crumb{
		{Name: "Home", URL: site.URL},
		{Name: "Journals", URL: site.URL + "/#journals"},
		{Name: a.Slug, URL: site.JournalURL(a.Slug)},
	}
	return page, nil
}

// NewCollectionPage builds the /articles page. articles are expected newest
// first.
func NewCollectionPage(site seo.Site, articles []*domain.Article) (CollectionPage, error) {
	pageURL := site.URL + "/articles"
	ld, err := jsonLD(
		seo.CollectionJSONLD(site, articles),
		seo.Breadcrumbs(site, seo.Crumb{Name: "Articles", URL: pageURL}),
		seo.WebSiteJSONLD(site),
	)
	if err != nil {
		return CollectionPage{}, err
	}

	items := make([]CollectionItem, len(articles))
	for i, a := range articles {
		items[i] = CollectionItem{
			URL:       site.ArticleURL(a.ID),
			Title:     a.PlainTitle(),
			Authors:   seo.AuthorList(a.Authors),
			Journal:   a.JournalTitle,
			Published: a.PublishedDate,
			Abstract:  domain.Truncate(domain.PlainText(a.Abstract), abstractLength),
		}
	}

	return CollectionPage{
		Site: site,
		Head: Head{
			Title:     site.Name + " - Article Collection",
			Canonical: pageURL,
			Meta:      seo.CollectionMeta(site, pageURL),
			JSONLD:    ld,
		},
		Items: items,
	}, nil
}

// NewNotFoundPage builds the not-found page for a missing record.
func NewNotFoundPage(site seo.Site, what string) NotFoundPage {
	return NotFoundPage{
		Site:    site,
		Head:    Head{Title: what + " Not Found | " + site.Name},
		Message: "The requested " + what + " could not be found.",
	}
}
