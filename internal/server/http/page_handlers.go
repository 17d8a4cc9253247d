package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/render"
)

const articleCacheControl = "public, max-age=31536000, immutable"

// lookupArticle resolves key against the catalog first and the content
// backend second.
func (s *Server) lookupArticle(r *http.Request, key string) (*domain.Article, error) {
	if s.catalog.Loaded() {
		if entry, err := s.catalog.Article(key); err == nil {
			return entry.Article, nil
		}
	}
	return s.source.GetBySlugOrID(r.Context(), key)
}

// articlePage handles GET /article/{key}.
func (s *Server) articlePage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	a, err := s.lookupArticle(r, key)
	if err != nil {
		s.renderPageError(w, r, err, "Article")
		return
	}

	page, err := render.NewArticlePage(s.site, a, s.markdown)
	if err != nil {
		s.renderPageError(w, r, err, "Article")
		return
	}
	out, err := s.pages.RenderArticle(r.Context(), page)
	if err != nil {
		s.renderPageError(w, r, err, "Article")
		return
	}

	w.Header().Set("Cache-Control", articleCacheControl)
	w.Header().Set("X-Academic-Content", "peer-reviewed")
	s.writeHTML(w, http.StatusOK, out, "article")
}

// legacyArticleRedirect handles GET /articles/{key}.
func (s *Server) legacyArticleRedirect(w http.ResponseWriter, r *http.Request) {
	target := "/article/" + url.PathEscape(chi.URLParam(r, "key"))
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// journalPage handles GET /journal/{slug}.
func (s *Server) journalPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	a, err := s.source.GetBySlug(r.Context(), slug)
	if err != nil {
		s.renderPageError(w, r, err, "Journal")
		return
	}

	page, err := render.NewJournalPage(s.site, a, s.markdown)
	if err != nil {
		s.renderPageError(w, r, err, "Journal")
		return
	}
	out, err := s.pages.RenderArticle(r.Context(), page)
	if err != nil {
		s.renderPageError(w, r, err, "Journal")
		return
	}
	s.writeHTML(w, http.StatusOK, out, "journal")
}

// collectionPage handles GET /articles.
func (s *Server) collectionPage(w http.ResponseWriter, r *http.Request) {
	entries := s.catalog.Articles()
	articles := make([]*domain.Article, len(entries))
	for i, e := range entries {
		articles[i] = e.Article
	}

	page, err := render.NewCollectionPage(s.site, articles)
	if err != nil {
		s.renderPageError(w, r, err, "Page")
		return
	}
	out, err := s.pages.RenderCollection(r.Context(), page)
	if err != nil {
		s.renderPageError(w, r, err, "Page")
		return
	}
	s.writeHTML(w, http.StatusOK, out, "collection")
}

// notFoundPage renders the HTML not-found page for unknown routes.
func (s *Server) notFoundPage(w http.ResponseWriter, r *http.Request) {
	s.renderNotFound(w, r, "Page")
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, what string) {
	out, err := s.pages.RenderNotFound(r.Context(), render.NewNotFoundPage(s.site, what))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.writeHTML(w, http.StatusNotFound, out, "not_found")
}

// renderPageError renders the not-found page for missing records and a
// generic 500 for everything else.
func (s *Server) renderPageError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, domain.ErrNotFound) {
		s.renderNotFound(w, r, what)
		return
	}
	logger := observability.LoggerFromContext(r.Context(), s.logger)
	logger.Error().Err(err).
		Str("path", r.URL.Path).
		Msg("page rendering failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) writeHTML(w http.ResponseWriter, status int, body []byte, page string) {
	if s.metrics != nil {
		s.metrics.RecordPageRendered(page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
