package httpserver

import (
	"net/http"

	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/publish"
)

// sitemap handles GET /sitemap.xml.
func (s *Server) sitemap(w http.ResponseWriter, r *http.Request) {
	a, err := s.builder.Sitemap(r.Context())
	s.writeArtifact(w, r, a, err)
}

// feed handles GET /feed.xml.
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	a, err := s.builder.Feed(r.Context())
	s.writeArtifact(w, r, a, err)
}

// robots handles GET /robots.txt.
func (s *Server) robots(w http.ResponseWriter, r *http.Request) {
	s.writeArtifact(w, r, s.builder.Robots(), nil)
}

func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, a publish.Artifact, err error) {
	if err != nil {
		logger := observability.LoggerFromContext(r.Context(), s.logger)
		logger.Error().Err(err).
			Str("path", r.URL.Path).
			Msg("artefact rendering failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordPageRendered(a.Name)
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Cache-Control", a.CacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Body)
}
