package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
)

// Catalog is the read side of the catalog store.
type Catalog interface {
	Loaded() bool
	Journals() []domain.Journal
}

// Config bounds request pagination.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Service serves searches over the current catalog snapshot.
type Service struct {
	catalog Catalog
	config  Config
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewService creates a search service. metrics may be nil.
func NewService(catalog Catalog, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.MaxLimit <= 0 || cfg.MaxLimit > MaxLimit {
		cfg.MaxLimit = MaxLimit
	}
	return &Service{
		catalog: catalog,
		config:  cfg,
		logger:  logger.With().Str("component", "search").Logger(),
		metrics: metrics,
	}
}

// DefaultLimit returns the page size applied when a request sets none.
func (s *Service) DefaultLimit() int {
	return s.config.DefaultLimit
}

// Search normalizes and validates req, then ranks the catalog against it.
// A blank query short-circuits to the zero-result page whatever the other
// parameters hold.
//
// Errors: *domain.ValidationError for out-of-range parameters,
// domain.ErrServiceUnavailable before the catalog is loaded and
// domain.ErrInternalError when scoring fails unexpectedly.
func (s *Service) Search(ctx context.Context, req Request) (resp Response, err error) {
	if strings.TrimSpace(req.Query) == "" {
		return Empty(s.emptyLimit(req.Limit)), nil
	}
	if req.Limit == 0 {
		req.Limit = s.config.DefaultLimit
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.recordFailure("invalid_request")
		return Response{}, err
	}
	if req.Limit > s.config.MaxLimit {
		s.recordFailure("invalid_request")
		return Response{}, domain.NewValidationError("limit", fmt.Sprintf("must be at most %d", s.config.MaxLimit))
	}

	if !s.catalog.Loaded() {
		s.recordFailure("catalog_unavailable")
		return Response{}, fmt.Errorf("catalog not loaded: %w", domain.ErrServiceUnavailable)
	}

	logger := observability.WithSearchContext(observability.LoggerFromContext(ctx, s.logger), req.Query, req.Type)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("search scoring failed")
			s.recordFailure("internal")
			resp, err = Response{}, fmt.Errorf("search scoring: %v: %w", r, domain.ErrInternalError)
		}
	}()

	start := time.Now()
	resp = Run(s.catalog.Journals(), req)
	elapsed := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordSearch(req.Type, resp.Total, elapsed.Seconds())
	}
	logger.Debug().
		Int("total", resp.Total).
		Int("returned", len(resp.Results)).
		Dur("duration", elapsed).
		Msg("search served")
	return resp, nil
}

// emptyLimit is the page size echoed for a blank query: the requested limit
// when it is in range, the default otherwise.
func (s *Service) emptyLimit(limit int) int {
	if limit < 1 || limit > s.config.MaxLimit {
		return s.config.DefaultLimit
	}
	return limit
}

func (s *Service) recordFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordSearchFailed(reason)
	}
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}
