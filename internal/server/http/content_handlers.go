package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
)

const defaultPerPage = 10

// listArticles handles GET /api/articles.
func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := contentsource.ListParams{
		Search:  strings.TrimSpace(q.Get("search")),
		OrderBy: q.Get("orderby"),
		Order:   q.Get("order"),
	}
	var err error
	if params.Page, err = intParam(q, "page", 1); err != nil {
		writeDomainError(w, err)
		return
	}
	if params.PerPage, err = intParam(q, "per_page", defaultPerPage); err != nil {
		writeDomainError(w, err)
		return
	}
	if params.Categories, err = parseCategories(q.Get("categories")); err != nil {
		writeDomainError(w, err)
		return
	}
	params.Normalize()

	res, err := s.source.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if res.Degraded() {
		logger := observability.LoggerFromContext(r.Context(), s.logger)
		logger.Warn().
			Err(res.BackendErr).
			Str("source", s.source.Name()).
			Msg("serving empty article list")
	}

	w.Header().Set("X-WP-Total", strconv.Itoa(res.Total))
	w.Header().Set("X-WP-TotalPages", strconv.Itoa(res.TotalPages))
	writeJSON(w, http.StatusOK, listResultToResponse(res, params))
}

// parseCategories parses a comma-separated list of category ids.
func parseCategories(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id < 0 {
			return nil, domain.NewValidationError("categories", "must be a comma-separated list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// getArticle handles GET /api/articles/{key}.
func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	a, err := s.source.GetBySlugOrID(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleDetailResponse(a, s.site.Name))
}

// listCategories handles GET /api/categories.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.source.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []contentsource.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// listAuthors handles GET /api/authors.
func (s *Server) listAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.source.Authors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if authors == nil {
		authors = []contentsource.Author{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

// listJournals handles GET /api/journals.
func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	if !s.catalog.Loaded() {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}
	journals := s.catalog.Journals()
	resp := listJournalsResponse{
		Journals: make([]journalResponse, len(journals)),
		Total:    len(journals),
	}
	for i := range journals {
		resp.Journals[i] = journalToResponse(&journals[i], false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// getJournal handles GET /api/journals/{key}.
func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	if !s.catalog.Loaded() {
		writeDomainError(w, domain.ErrServiceUnavailable)
		return
	}
	j, err := s.catalog.Journal(chi.URLParam(r, "key"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, journalToResponse(j, true))
}
