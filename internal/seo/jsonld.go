package seo

import (
	"strings"
	"time"

	"github.com/celnetamit/hlwp/internal/domain"
)

const schemaContext = "https://schema.org"

// collectionItemLimit bounds the ItemList of a collection page.
const collectionItemLimit = 50

// Person is a schema.org Person.
type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Organization is a schema.org Organization.
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// PropertyValue is a schema.org PropertyValue, used for DOIs.
type PropertyValue struct {
	Type       string `json:"@type"`
	PropertyID string `json:"propertyID"`
	Value      string `json:"value"`
}

// Periodical is a schema.org Periodical.
type Periodical struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	ISSN string `json:"issn,omitempty"`
}

// ImageObject is a schema.org ImageObject.
type ImageObject struct {
	Type    string `json:"@type"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// ScholarlyArticle is a schema.org ScholarlyArticle.
type ScholarlyArticle struct {
	Context       string          `json:"@context,omitempty"`
	Type          string          `json:"@type"`
	Headline      string          `json:"headline,omitempty"`
	Name          string          `json:"name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Author        []Person        `json:"author"`
	Publisher     *Organization   `json:"publisher,omitempty"`
	DatePublished string          `json:"datePublished,omitempty"`
	DateModified  string          `json:"dateModified,omitempty"`
	URL           string          `json:"url"`
	Identifier    []PropertyValue `json:"identifier,omitempty"`
	IsPartOf      *Periodical     `json:"isPartOf,omitempty"`
	Abstract      string          `json:"abstract,omitempty"`
	Keywords      string          `json:"keywords,omitempty"`
	Image         *ImageObject    `json:"image,omitempty"`
}

// ListItem is a schema.org ListItem. Item is a URL or a nested object.
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Item     any    `json:"item"`
}

// BreadcrumbList is a schema.org BreadcrumbList.
type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// ItemList is a schema.org ItemList.
type ItemList struct {
	Type            string     `json:"@type"`
	NumberOfItems   int        `json:"numberOfItems"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// CollectionPage is a schema.org CollectionPage.
type CollectionPage struct {
	Context     string       `json:"@context"`
	Type        string       `json:"@type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	MainEntity  ItemList     `json:"mainEntity"`
	Provider    Organization `json:"provider"`
}

// SearchAction is a schema.org SearchAction.
type SearchAction struct {
	Type       string `json:"@type"`
	Target     string `json:"target"`
	QueryInput string `json:"query-input"`
}

// WebSite is a schema.org WebSite.
type WebSite struct {
	Context         string       `json:"@context"`
	Type            string       `json:"@type"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Description     string       `json:"description,omitempty"`
	InLanguage      string       `json:"inLanguage"`
	PotentialAction SearchAction `json:"potentialAction"`
}

// Crumb is one breadcrumb step.
type Crumb struct {
	Name string
	URL  string
}

func persons(authors []string) []Person {
	if len(authors) == 0 {
		return []Person{{Type: "Person", Name: UnknownAuthor}}
	}
	out := make([]Person, len(authors))
	for i, a := range authors {
		out[i] = Person{Type: "Person", Name: a}
	}
	return out
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ArticleJSONLD returns the ScholarlyArticle object of an article page.
func ArticleJSONLD(a *domain.Article, pageURL string, site Site) ScholarlyArticle {
	publisher := a.Publisher
	if publisher == "" {
		publisher = site.Name
	}

	doc := ScholarlyArticle{
		Context:       schemaContext,
		Type:          "ScholarlyArticle",
		Headline:      a.PlainTitle(),
		Description:   domain.PlainText(firstNonEmpty(a.Excerpt, a.Abstract)),
		Author:        persons(a.Authors),
		Publisher:     &Organization{Type: "Organization", Name: publisher},
		DatePublished: isoTime(a.PublishedDate),
		DateModified:  isoTime(a.Modified),
		URL:           pageURL,
		Abstract:      domain.PlainText(a.Abstract),
		Keywords:      strings.Join(a.Keywords, ", "),
	}
	if a.DOI != "" {
		doc.Identifier = []PropertyValue{{Type: "PropertyValue", PropertyID: "DOI", Value: a.DOI}}
	}
	if a.ISSN != "" {
		name := a.JournalTitle
		if name == "" {
			name = publisher
		}
		doc.IsPartOf = &Periodical{Type: "Periodical", Name: name, ISSN: a.ISSN}
	}
	if a.ImageURL != "" {
		doc.Image = &ImageObject{Type: "ImageObject", URL: a.ImageURL, Caption: a.PlainTitle()}
	}
	return doc
}

// Breadcrumbs returns a BreadcrumbList starting at the site home.
func Breadcrumbs(site Site, crumbs ...Crumb) BreadcrumbList {
	items := make([]ListItem, 0, len(crumbs)+1)
	items = append(items, ListItem{Type: "ListItem", Position: 1, Name: "Home", Item: site.URL})
	for i, c := range crumbs {
		items = append(items, ListItem{Type: "ListItem", Position: i + 2, Name: c.Name, Item: c.URL})
	}
	return BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList", ItemListElement: items}
}

// JournalBreadcrumbs returns Home > Journals > slug.
func JournalBreadcrumbs(site Site, slug string) BreadcrumbList {
	return Breadcrumbs(site,
		Crumb{Name: "Journals", URL: site.URL + "/#journals"},
		Crumb{Name: slug, URL: site.JournalURL(slug)},
	)
}

// CollectionJSONLD returns the CollectionPage object for the article
// listing. At most 50 articles are itemised; numberOfItems counts all.
func CollectionJSONLD(site Site, articles []*domain.Article) CollectionPage {
	n := min(len(articles), collectionItemLimit)
	items := make([]ListItem, n)
	for i, a := range articles[:n] {
		items[i] = ListItem{
			Type:     "ListItem",
			Position: i + 1,
			Item: ScholarlyArticle{
				Type:          "ScholarlyArticle",
				Name:          a.PlainTitle(),
				URL:           site.ArticleURL(a.ID),
				Author:        persons(a.Authors),
				DatePublished: isoTime(a.PublishedDate),
				Publisher:     &Organization{Type: "Organization", Name: firstNonEmpty(a.Publisher, site.Name)},
			},
		}
	}

	return CollectionPage{
		Context:     schemaContext,
		Type:        "CollectionPage",
		Name:        site.Name + " - Article Collection",
		Description: "Comprehensive collection of peer-reviewed academic articles",
		URL:         site.URL + "/articles",
		MainEntity: ItemList{
			Type:            "ItemList",
			NumberOfItems:   len(articles),
			ItemListElement: items,
		},
		Provider: Organization{Type: "Organization", Name: site.Name, URL: site.URL},
	}
}

// WebSiteJSONLD returns the site-wide WebSite object with its search action.
func WebSiteJSONLD(site Site) WebSite {
	return WebSite{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        site.Name,
		URL:         site.URL,
		Description: site.Description,
		InLanguage:  "en",
		PotentialAction: SearchAction{
			Type:       "SearchAction",
			Target:     site.URL + "/search?q={search_term_string}",
			QueryInput: "required name=search_term_string",
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
