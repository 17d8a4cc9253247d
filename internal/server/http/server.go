// Package httpserver provides the public HTTP surface of the journal library:
// the JSON API, the rendered article pages and the crawler artefacts.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/catalog"
	"github.com/celnetamit/hlwp/internal/contentsource"
	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/publish"
	"github.com/celnetamit/hlwp/internal/render"
	"github.com/celnetamit/hlwp/internal/search"
	"github.com/celnetamit/hlwp/internal/seo"
)

// Catalog is the read side of the catalog store used by the handlers.
type Catalog interface {
	Loaded() bool
	Journals() []domain.Journal
	Journal(key string) (*domain.Journal, error)
	Article(key string) (catalog.Entry, error)
	Articles() []catalog.Entry
}

// Server is the HTTP server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	source     contentsource.ContentSource
	catalog    Catalog
	search     *search.Service
	builder    *publish.Builder
	pages      *render.PageRenderer
	markdown   *render.MarkdownRenderer
	site       seo.Site
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Source   contentsource.ContentSource
	Catalog  Catalog
	Search   *search.Service
	Builder  *publish.Builder
	Pages    *render.PageRenderer
	Markdown *render.MarkdownRenderer
	Site     seo.Site
}

// NewServer creates a new HTTP server with all dependencies. metrics may be
// nil.
func NewServer(cfg Config, deps Deps, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		source:   deps.Source,
		catalog:  deps.Catalog,
		search:   deps.Search,
		builder:  deps.Builder,
		pages:    deps.Pages,
		markdown: deps.Markdown,
		site:     deps.Site,
		logger:   logger.With().Str("component", "http-server").Logger(),
		metrics:  metrics,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(accessLogMiddleware(s.logger))

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.searchGet)
		r.Post("/search", s.searchPost)

		r.Get("/articles", s.listArticles)
		r.Get("/articles/{key}", s.getArticle)
		r.Get("/categories", s.listCategories)
		r.Get("/authors", s.listAuthors)

		r.Get("/journals", s.listJournals)
		r.Get("/journals/{key}", s.getJournal)
	})

	// Pages
	r.Get("/article/{key}", s.articlePage)
	r.Get("/articles/{key}", s.legacyArticleRedirect)
	r.Get("/articles", s.collectionPage)
	r.Get("/journal/{slug}", s.journalPage)

	// Crawler artefacts
	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/feed.xml", s.feed)
	r.Get("/robots.txt", s.robots)

	r.NotFound(s.notFoundPage)

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports ready once the catalog is loaded and the content
// backend answers.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if !s.catalog.Loaded() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"catalog": "loading",
		})
		return
	}
	if err := s.source.TestConnection(r.Context()); err != nil {
		logger := observability.LoggerFromContext(r.Context(), s.logger)
		logger.Warn().Err(err).Msg("readiness: backend unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"catalog": "loaded",
			"backend": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"catalog": "loaded",
		"backend": "ok",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
