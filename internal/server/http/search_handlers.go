package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
	"github.com/celnetamit/hlwp/internal/search"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// searchGet handles GET /api/search. The query is read from "query", with
// "q" accepted as an alias.
func (s *Server) searchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := q.Get("query")
	if query == "" {
		query = q.Get("q")
	}
	req := search.Request{
		Query: query,
		Type:  q.Get("type"),
		Filters: search.Filters{
			Year:    q.Get("year"),
			Subject: q.Get("subject"),
			Author:  q.Get("author"),
			Journal: q.Get("journal"),
		},
	}

	// A blank query answers with the empty page, so malformed pagination is
	// only an error when there is something to search for.
	blank := strings.TrimSpace(query) == ""
	var err error
	if req.Limit, err = intParam(q, "limit", s.search.DefaultLimit()); err != nil && !blank {
		writeSearchError(w, err)
		return
	}
	if req.Offset, err = intParam(q, "offset", 0); err != nil && !blank {
		writeSearchError(w, err)
		return
	}

	s.runSearch(w, r, req)
}

// searchPost handles POST /api/search with a JSON body.
func (s *Server) searchPost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, searchErrorResponse{Error: "Search failed", Message: "Invalid request body"})
		return
	}

	var req search.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, searchErrorResponse{Error: "Search failed", Message: "Invalid request body"})
		return
	}

	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req search.Request) {
	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		if !search.IsClientError(err) {
			logger := observability.LoggerFromContext(r.Context(), s.logger)
			logger.Error().Err(err).Msg("search failed")
		}
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// intParam parses an optional integer query parameter.
func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

