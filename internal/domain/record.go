// Package domain defines the journal and article records served by the library
// and the error taxonomy shared by every layer.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// RecordKind tags a record as a journal or an article.
type RecordKind string

const (
	// KindJournal identifies a journal record.
	KindJournal RecordKind = "journal"

	// KindArticle identifies an article record.
	KindArticle RecordKind = "article"
)

// Article is the canonical article record. Ids are assigned by the content
// backend (or the catalog file) and are never minted by the service.
type Article struct {
	ID   string
	Slug string

	// Title is kept as rendered by the backend and may contain markup.
	Title string

	// Authors is in display order. An empty list stays empty here; the
	// "Unknown Author" placeholder is applied only when rendering.
	Authors []string

	Abstract string
	Excerpt  string
	Content  string
	FullText string

	Keywords []string
	Subjects []string

	// PublishedDate is the publication date, falling back to the backend's
	// generic post date. A zero value means unknown.
	PublishedDate time.Time
	Modified      time.Time

	// Year is an explicit publication year supplied by the backend, if any.
	Year string

	DOI        string
	Pages      string
	Volume     string
	Issue      string
	Publisher  string
	PDFURL     string
	ISSN       string
	Language   string
	Citations  int
	References []string

	JournalTitle string
	Link         string
	ImageURL     string
	Categories   []int
}

// Journal is the canonical journal record. It owns zero or more articles.
type Journal struct {
	ID              string
	Slug            string
	Title           string
	Description     string
	Subjects        []string
	Publisher       string
	ISSN            string
	EISSN           string
	LastUpdated     time.Time
	PublishedDate   time.Time
	ActivelyUpdated bool
	Articles        []Article
}

// Normalize applies the ingestion defaults: strings are trimmed, tag lists
// lose blank entries and nil slices become empty slices.
func (a *Article) Normalize() {
	a.ID = strings.TrimSpace(a.ID)
	a.Slug = strings.TrimSpace(a.Slug)
	a.Title = strings.TrimSpace(a.Title)
	a.Abstract = strings.TrimSpace(a.Abstract)
	a.Excerpt = strings.TrimSpace(a.Excerpt)
	a.Year = strings.TrimSpace(a.Year)
	a.DOI = strings.TrimSpace(a.DOI)
	a.Pages = strings.TrimSpace(a.Pages)
	a.Volume = strings.TrimSpace(a.Volume)
	a.Issue = strings.TrimSpace(a.Issue)
	a.Publisher = strings.TrimSpace(a.Publisher)
	a.PDFURL = strings.TrimSpace(a.PDFURL)
	a.ISSN = strings.TrimSpace(a.ISSN)
	a.Language = strings.TrimSpace(a.Language)

	a.Authors = cleanList(a.Authors)
	a.Keywords = cleanList(a.Keywords)
	a.Subjects = cleanList(a.Subjects)
	a.References = cleanList(a.References)
	if a.Categories == nil {
		a.Categories = []int{}
	}
	if a.Citations < 0 {
		a.Citations = 0
	}
	if a.Modified.IsZero() {
		a.Modified = a.PublishedDate
	}
}

// Normalize normalizes the journal and every article it owns. Articles
// inherit the journal title, publisher and ISSN when they carry none.
func (j *Journal) Normalize() {
	j.ID = strings.TrimSpace(j.ID)
	j.Slug = strings.TrimSpace(j.Slug)
	j.Title = strings.TrimSpace(j.Title)
	j.Description = strings.TrimSpace(j.Description)
	j.Publisher = strings.TrimSpace(j.Publisher)
	j.ISSN = strings.TrimSpace(j.ISSN)
	j.EISSN = strings.TrimSpace(j.EISSN)
	j.Subjects = cleanList(j.Subjects)
	if j.Slug == "" {
		j.Slug = j.ID
	}
	if j.Articles == nil {
		j.Articles = []Article{}
	}

	for i := range j.Articles {
		a := &j.Articles[i]
		a.Normalize()
		if a.JournalTitle == "" {
			a.JournalTitle = j.Title
		}
		if a.Publisher == "" {
			a.Publisher = j.Publisher
		}
		if a.ISSN == "" {
			a.ISSN = j.ISSN
		}
	}
}

// PlainTitle returns the title with markup stripped.
func (a *Article) PlainTitle() string {
	return StripHTML(a.Title)
}

// PublicationYear returns the explicit year when it is numeric, otherwise
// the year of PublishedDate. ok is false when neither is known.
func (a *Article) PublicationYear() (year int, ok bool) {
	if a.Year != "" {
		if y, err := strconv.Atoi(a.Year); err == nil {
			return y, true
		}
	}
	if !a.PublishedDate.IsZero() {
		return a.PublishedDate.Year(), true
	}
	return 0, false
}

// EffectiveSubjects returns the article's own subjects, or the parent
// journal's subjects when the article has none.
func (a *Article) EffectiveSubjects(parent *Journal) []string {
	if len(a.Subjects) > 0 || parent == nil {
		return a.Subjects
	}
	return parent.Subjects
}

// Key returns the slug when present, otherwise the id.
func (a *Article) Key() string {
	if a.Slug != "" {
		return a.Slug
	}
	return a.ID
}

// MatchesKey reports whether key names this article by id or slug.
func (a *Article) MatchesKey(key string) bool {
	return key != "" && (a.ID == key || a.Slug == key)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
