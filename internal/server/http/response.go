package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/seo"
)

// Response types for JSON serialization.

type articleResponse struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug,omitempty"`
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Abstract      string     `json:"abstract,omitempty"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Content       string     `json:"content,omitempty"`
	Keywords      []string   `json:"keywords"`
	Subjects      []string   `json:"subjects"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Modified      *time.Time `json:"modified,omitempty"`
	Year          string     `json:"year,omitempty"`
	DOI           string     `json:"doi,omitempty"`
	Pages         string     `json:"pages,omitempty"`
	Volume        string     `json:"volume,omitempty"`
	Issue         string     `json:"issue,omitempty"`
	Publisher     string     `json:"publisher,omitempty"`
	PDFURL        string     `json:"pdfUrl,omitempty"`
	ISSN          string     `json:"issn,omitempty"`
	Journal       string     `json:"journal,omitempty"`
	Link          string     `json:"link,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	Categories    []int      `json:"categories"`
	Citations     int        `json:"citations"`
	References    []string   `json:"references,omitempty"`
	Citation      string     `json:"citation,omitempty"`
}

type listArticlesResponse struct {
	Articles   []articleResponse `json:"articles"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	Degraded   bool              `json:"degraded"`
}

type journalResponse struct {
	ID              string            `json:"id"`
	Slug            string            `json:"slug"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Subjects        []string          `json:"subjects"`
	Publisher       string            `json:"publisher,omitempty"`
	ISSN            string            `json:"issn,omitempty"`
	EISSN           string            `json:"eissn,omitempty"`
	LastUpdated     *time.Time        `json:"lastUpdated,omitempty"`
	ActivelyUpdated bool              `json:"activelyUpdated"`
	ArticleCount    int               `json:"articleCount"`
	Articles        []articleResponse `json:"articles,omitempty"`
}

type listJournalsResponse struct {
	Journals []journalResponse `json:"journals"`
	Total    int               `json:"total"`
}

type searchErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Converter functions

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func articleToResponse(a *domain.Article) articleResponse {
	return articleResponse{
		ID:            a.ID,
		Slug:          a.Slug,
		Title:         a.Title,
		Authors:       a.Authors,
		Abstract:      a.Abstract,
		Excerpt:       a.Excerpt,
		Keywords:      a.Keywords,
		Subjects:      a.Subjects,
		PublishedDate: optionalTime(a.PublishedDate),
		Modified:      optionalTime(a.Modified),
		Year:          a.Year,
		DOI:           a.DOI,
		Pages:         a.Pages,
		Volume:        a.Volume,
		Issue:         a.Issue,
		Publisher:     a.Publisher,
		PDFURL:        a.PDFURL,
		ISSN:          a.ISSN,
		Journal:       a.JournalTitle,
		Link:          a.Link,
		ImageURL:      a.ImageURL,
		Categories:    a.Categories,
		Citations:     a.Citations,
	}
}

// articleDetailResponse adds the body, references and short citation.
func articleDetailResponse(a *domain.Article, siteName string) articleResponse {
	resp := articleToResponse(a)
	resp.Content = a.Content
	resp.References = a.References
	resp.Citation = seo.CitationString(a, siteName)
	return resp
}

func listResultToResponse(res *contentsource.ListResult, params contentsource.ListParams) listArticlesResponse {
	articles := make([]articleResponse, len(res.Articles))
	for i := range res.Articles {
		articles[i] = articleToResponse(&res.Articles[i])
	}
	return listArticlesResponse{
		Articles:   articles,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Page:       params.Page,
		PerPage:    params.PerPage,
		Degraded:   res.Degraded(),
	}
}

func journalToResponse(j *domain.Journal, withArticles bool) journalResponse {
	resp := journalResponse{
		ID:              j.ID,
		Slug:            j.Slug,
		Title:           j.Title,
		Description:     j.Description,
		Subjects:        j.Subjects,
		Publisher:       j.Publisher,
		ISSN:            j.ISSN,
		EISSN:           j.EISSN,
		LastUpdated:     optionalTime(j.LastUpdated),
		ActivelyUpdated: j.ActivelyUpdated,
		ArticleCount:    len(j.Articles),
	}
	if withArticles {
		resp.Articles = make([]articleResponse, len(j.Articles))
		for i := range j.Articles {
			resp.Articles[i] = articleToResponse(&j.Articles[i])
		}
	}
	return resp
}

// writeDomainError maps domain errors to HTTP status codes and writes a JSON
// error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeSearchError writes the search endpoint's error shape.
func writeSearchError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, searchErrorResponse{Error: "Search failed", Message: ve.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, searchErrorResponse{Error: "Search failed", Message: "Invalid request"})
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, searchErrorResponse{Error: "Search failed", Message: "Search is temporarily unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, searchErrorResponse{Error: "Search failed", Message: "Internal server error"})
	}
}
