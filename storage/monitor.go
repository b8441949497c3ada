package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SourceMonitor reports writes to a fixed set of source files.
// It watches the parent directories so that files replaced by rename are still seen.
type SourceMonitor struct {
	watcher *fsnotify.Watcher
	files   map[string]struct{}
}

// NewSourceMonitor starts watching the directories containing paths.
func NewSourceMonitor(paths ...string) (*SourceMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("monitor: new watcher: %w", err)
	}

	m := &SourceMonitor{watcher: watcher, files: make(map[string]struct{})}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("monitor: resolve %q: %w", p, err)
		}
		m.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("monitor: watch %q: %w", dir, err)
		}
	}
	return m, nil
}

// Watch calls onChange with the absolute path of every watched file that is
// written, created or renamed into place. It returns when ctx is done, the
// watcher is closed, or the watcher reports an error.
func (m *SourceMonitor) Watch(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, watched := m.files[abs]; watched {
				onChange(abs)
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("monitor: %w", err)
		}
	}
}

// WatchCoalesced is Watch with the events of a burst merged: onChange runs
// once quiet has passed without a new event, with the sorted set of paths
// that changed. Calls to onChange never overlap.
func (m *SourceMonitor) WatchCoalesced(ctx context.Context, quiet time.Duration, onChange func(paths []string)) error {
	var (
		mu      sync.Mutex
		run     sync.Mutex
		timer   *time.Timer
		pending = make(map[string]struct{})
	)

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		mu.Unlock()

		if len(paths) == 0 || ctx.Err() != nil {
			return
		}
		sort.Strings(paths)
		run.Lock()
		defer run.Unlock()
		onChange(paths)
	}

	err := m.Watch(ctx, func(path string) {
		mu.Lock()
		defer mu.Unlock()
		pending[path] = struct{}{}
		if timer == nil {
			timer = time.AfterFunc(quiet, flush)
			return
		}
		timer.Reset(quiet)
	})

	mu.Lock()
	if timer != nil {
		timer.Stop()
	}
	mu.Unlock()
	return err
}

// Close stops the underlying watcher.
func (m *SourceMonitor) Close() error {
	return m.watcher.Close()
}
