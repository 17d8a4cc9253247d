package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celnetamit/hlwp/internal/domain"
	"github.com/celnetamit/hlwp/internal/observability"
)

func journalsNamed(title string) []domain.Journal {
	return []domain.Journal{{ID: "j", Slug: "j", Title: title}}
}

func TestStore_EmptyBeforeLoad(t *testing.T) {
	s := NewStore(NewFileLoader(""), zerolog.Nop(), nil)

	assert.False(t, s.Loaded())
	assert.Zero(t, s.Generation())
	assert.Nil(t, s.Journals())
	assert.Nil(t, s.Articles())

	_, err := s.Article("anything")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_ReloadEmbeddedCatalog(t *testing.T) {
	s := NewStore(NewFileLoader(""), zerolog.Nop(), nil)

	gen, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
	assert.True(t, s.Loaded())
	assert.False(t, s.LoadedAt().IsZero())
	assert.Len(t, s.Journals(), 2)

	t.Run("article by id and slug resolve to the same record", func(t *testing.T) {
		byID, err := s.Article("quantum-computing-breakthrough-2024")
		require.NoError(t, err)
		bySlug, err := s.Article("quantum-computing-breakthrough-advances")
		require.NoError(t, err)
		assert.Same(t, byID.Article, bySlug.Article)
		assert.Equal(t, "nature-science-tech", byID.Journal.ID)
	})

	t.Run("journal lookup", func(t *testing.T) {
		j, err := s.Journal("journal-biomedical-engineering")
		require.NoError(t, err)
		assert.Equal(t, "Journal of Biomedical Engineering", j.Title)

		_, err = s.Journal("missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("articles newest first", func(t *testing.T) {
		entries := s.Articles()
		require.Len(t, entries, 3)
		assert.Equal(t, "quantum-computing-breakthrough-2024", entries[0].Article.ID)
		assert.Equal(t, "machine-learning-healthcare-2024", entries[1].Article.ID)
		assert.Equal(t, "neural-interfaces-brain-computer-2024", entries[2].Article.ID)
	})
}

func TestStore_ArticlesStableForEqualDates(t *testing.T) {
	day := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	loader := LoaderFunc(func(context.Context) ([]domain.Journal, error) {
		return []domain.Journal{{
			ID: "j",
			Articles: []domain.Article{
				{ID: "first", PublishedDate: day},
				{ID: "second", PublishedDate: day},
				{ID: "third", PublishedDate: day},
			},
		}}, nil
	})
	s := NewStore(loader, zerolog.Nop(), nil)
	_, err := s.Reload(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, e := range s.Articles() {
		ids = append(ids, e.Article.ID)
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

func TestStore_FailedReloadKeepsSnapshot(t *testing.T) {
	fail := false
	loader := LoaderFunc(func(context.Context) ([]domain.Journal, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return journalsNamed("good"), nil
	})
	metrics := observability.NewMetrics("test_catalog_failed_reload")
	s := NewStore(loader, zerolog.Nop(), metrics)

	_, err := s.Reload(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = s.Reload(context.Background())
	require.Error(t, err)

	assert.Equal(t, "good", s.Journals()[0].Title)
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("applied")))
}

func TestStore_StaleReloadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0

	loader := LoaderFunc(func(context.Context) ([]domain.Journal, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return journalsNamed("slow and old"), nil
		}
		return journalsNamed("fast and new"), nil
	})
	metrics := observability.NewMetrics("test_catalog_stale_reload")
	s := NewStore(loader, zerolog.Nop(), metrics)

	slowErr := make(chan error, 1)
	go func() {
		_, err := s.Reload(context.Background())
		slowErr <- err
	}()
	<-started

	gen, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	close(release)
	err = <-slowErr
	assert.True(t, errors.Is(err, ErrStaleLoad))

	assert.Equal(t, "fast and new", s.Journals()[0].Title)
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CatalogReloads.WithLabelValues("stale")))
}

func TestStore_Refresh(t *testing.T) {
	s := NewStore(LoaderFunc(func(context.Context) ([]domain.Journal, error) {
		return nil, errors.New("boom")
	}), zerolog.Nop(), nil)

	s.Refresh(context.Background())
	assert.False(t, s.Loaded())
}

func writeCatalog(t *testing.T, path, title string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("journals:\n  - id: j\n    title: "+title+"\n"), 0o644))
}

// replaceCatalog saves by rename so readers never see a half-written file.
func replaceCatalog(path, title string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte("journals:\n  - id: j\n    title: "+title+"\n"), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func firstTitle(s *Store) string {
	journals := s.Journals()
	if len(journals) == 0 {
		return ""
	}
	return journals[0].Title
}

func TestStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journals.yaml")
	writeCatalog(t, path, "before")

	s := NewStore(NewFileLoader(path), zerolog.Nop(), nil)
	_, err := s.Reload(context.Background())
	require.NoError(t, err)

	fw, err := s.newFileWatcher(path, watchDebounce, watchMaxWait)
	require.NoError(t, err)
	defer fw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fw.run(ctx) }()

	writeCatalog(t, path, "after")

	assert.Eventually(t, func() bool {
		return firstTitle(s) == "after"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestStore_Watch_ContinuousWritesStillReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journals.yaml")
	writeCatalog(t, path, "before")

	s := NewStore(NewFileLoader(path), zerolog.Nop(), nil)
	_, err := s.Reload(context.Background())
	require.NoError(t, err)

	// The quiet period is never reached while the writer runs, so only the
	// max wait can trigger a reload.
	fw, err := s.newFileWatcher(path, time.Second, 300*time.Millisecond)
	require.NoError(t, err)
	defer fw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- fw.run(ctx) }()

	stopWriter := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopWriter:
				return
			case <-ticker.C:
				_ = replaceCatalog(path, "after")
			}
		}
	}()

	assert.Eventually(t, func() bool {
		return firstTitle(s) == "after"
	}, 3*time.Second, 50*time.Millisecond)

	close(stopWriter)
	<-writerDone
	cancel()
	assert.NoError(t, <-done)
}
