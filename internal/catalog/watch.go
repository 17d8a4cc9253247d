package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// watchDebounce coalesces the burst of events an editor save produces.
	watchDebounce = 200 * time.Millisecond

	// watchMaxWait bounds how long a stream of writes can postpone a reload.
	watchMaxWait = 2 * time.Second
)

// Watch reloads the store whenever the file at path changes. It watches the
// parent directory so that atomic replace-by-rename saves are seen. Watch
// blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, path string) error {
	fw, err := s.newFileWatcher(path, watchDebounce, watchMaxWait)
	if err != nil {
		return err
	}
	defer fw.Close()
	return fw.run(ctx)
}

// fileWatcher turns change events on one file into store refreshes. A
// refresh fires once the file has been quiet for debounce, or maxWait after
// the first unhandled change, whichever comes first.
type fileWatcher struct {
	store    *Store
	path     string
	events   *fsnotify.Watcher
	debounce time.Duration
	maxWait  time.Duration
}

// newFileWatcher registers the watch before returning, so changes made after
// it returns are observed by run.
func (s *Store) newFileWatcher(path string, debounce, maxWait time.Duration) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info().Str("path", abs).Msg("watching catalog file")

	return &fileWatcher{store: s, path: abs, events: w, debounce: debounce, maxWait: maxWait}, nil
}

func (fw *fileWatcher) Close() error {
	return fw.events.Close()
}

func (fw *fileWatcher) run(ctx context.Context) error {
	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	deadline := time.NewTimer(time.Hour)
	deadline.Stop()
	pending := false

	reload := func() {
		quiet.Stop()
		deadline.Stop()
		if !pending {
			return
		}
		pending = false
		reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		fw.store.Refresh(reloadCtx)
		cancel()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.events.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !pending {
				pending = true
				deadline.Reset(fw.maxWait)
			}
			quiet.Reset(fw.debounce)
		case err, ok := <-fw.events.Errors:
			if !ok {
				return nil
			}
			fw.store.logger.Warn().Err(err).Msg("catalog watcher error")
		case <-quiet.C:
			reload()
		case <-deadline.C:
			reload()
		}
	}
}
