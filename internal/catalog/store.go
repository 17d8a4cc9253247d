// Package catalog holds the in-memory journal catalog that search and the
// HTML pages read from.
//
// A Store is filled by a Loader and replaced wholesale on every reload. Each
// reload takes a sequence number before it starts loading; when it finishes,
// its snapshot is applied only if no later reload has been applied first.
// Readers therefore never observe an older catalog after a newer one.
package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
)

// ErrStaleLoad is returned by Reload when a later reload was applied while
// this one was loading. The loaded data is discarded.
var ErrStaleLoad = errors.New("catalog: stale load discarded")

// Reload outcomes used as metric labels.
const (
	reloadApplied = "applied"
	reloadStale   = "stale"
	reloadFailed  = "failed"
)

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) ([]domain.Journal, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) ([]domain.Journal, error) {
	return f(ctx)
}

// Entry pairs an article with the journal that owns it. Both point into an
// immutable snapshot and must not be modified.
type Entry struct {
	Article *domain.Article
	Journal *domain.Journal
}

type snapshot struct {
	journals  []domain.Journal
	byJournal map[string]int
	byArticle map[string]Entry
	articles  []Entry
	loadedAt  time.Time
}

func newSnapshot(journals []domain.Journal, now time.Time) *snapshot {
	s := &snapshot{
		journals:  journals,
		byJournal: make(map[string]int, len(journals)),
		byArticle: make(map[string]Entry),
		loadedAt:  now,
	}
	for i := range journals {
		j := &journals[i]
		s.byJournal[j.ID] = i
		if j.Slug != "" {
			if _, taken := s.byJournal[j.Slug]; !taken {
				s.byJournal[j.Slug] = i
			}
		}
		for k := range j.Articles {
			e := Entry{Article: &j.Articles[k], Journal: j}
			s.articles = append(s.articles, e)
			// First writer wins so lookups resolve to catalog order.
			if _, taken := s.byArticle[e.Article.ID]; !taken {
				s.byArticle[e.Article.ID] = e
			}
			if slug := e.Article.Slug; slug != "" {
				if _, taken := s.byArticle[slug]; !taken {
					s.byArticle[slug] = e
				}
			}
		}
	}
	sort.SliceStable(s.articles, func(a, b int) bool {
		return s.articles[a].Article.PublishedDate.After(s.articles[b].Article.PublishedDate)
	})
	return s
}

// Store is a concurrency-safe catalog snapshot holder.
type Store struct {
	loader  Loader
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time

	seq atomic.Uint64

	mu         sync.RWMutex
	snap       *snapshot
	applied    uint64
	generation uint64
}

// NewStore creates an empty store. metrics may be nil.
func NewStore(loader Loader, logger zerolog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		loader:  loader,
		logger:  logger.With().Str("component", "catalog").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
}

// Reload loads a fresh snapshot and applies it unless a later reload has
// already been applied, in which case ErrStaleLoad is returned. On a load
// error the current snapshot is kept.
func (s *Store) Reload(ctx context.Context) (uint64, error) {
	seq := s.seq.Add(1)

	journals, err := s.loader.Load(ctx)
	if err != nil {
		s.record(reloadFailed, 0, 0, 0)
		return 0, err
	}
	snap := newSnapshot(journals, s.now())

	s.mu.Lock()
	if seq < s.applied {
		gen := s.generation
		s.mu.Unlock()
		s.record(reloadStale, gen, 0, 0)
		return gen, ErrStaleLoad
	}
	s.snap = snap
	s.applied = seq
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.record(reloadApplied, gen, len(snap.journals), len(snap.articles))
	s.logger.Info().
		Uint64("generation", gen).
		Int("journals", len(snap.journals)).
		Int("articles", len(snap.articles)).
		Msg("catalog reloaded")
	return gen, nil
}

// Refresh runs Reload and logs the outcome. It suits cron and file-watch
// callbacks that have nowhere to return an error to.
func (s *Store) Refresh(ctx context.Context) {
	_, err := s.Reload(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleLoad):
		s.logger.Debug().Msg("catalog reload superseded by a newer one")
	default:
		s.logger.Error().Err(err).Msg("catalog reload failed, keeping previous snapshot")
	}
}

func (s *Store) record(result string, gen uint64, journals, articles int) {
	if s.metrics != nil {
		s.metrics.RecordCatalogReload(result, gen, journals, articles)
	}
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Loaded reports whether any snapshot has been applied.
func (s *Store) Loaded() bool {
	return s.current() != nil
}

// Generation returns the number of applied reloads.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// LoadedAt returns when the current snapshot was built.
func (s *Store) LoadedAt() time.Time {
	if snap := s.current(); snap != nil {
		return snap.loadedAt
	}
	return time.Time{}
}

// Journals returns the current journals in catalog order. The slice is
// shared and must be treated as read-only.
func (s *Store) Journals() []domain.Journal {
	if snap := s.current(); snap != nil {
		return snap.journals
	}
	return nil
}

// Journal looks a journal up by id or slug.
func (s *Store) Journal(key string) (*domain.Journal, error) {
	if snap := s.current(); snap != nil {
		if i, ok := snap.byJournal[key]; ok {
			return &snap.journals[i], nil
		}
	}
	return nil, domain.NewNotFoundError("journal", key)
}

// Article looks an article up by id or slug.
func (s *Store) Article(key string) (Entry, error) {
	if snap := s.current(); snap != nil {
		if e, ok := snap.byArticle[key]; ok {
			return e, nil
		}
	}
	return Entry{}, domain.NewNotFoundError("article", key)
}

// Articles returns every article, newest first. Articles published on the
// same date keep catalog order.
func (s *Store) Articles() []Entry {
	if snap := s.current(); snap != nil {
		return snap.articles
	}
	return nil
}
