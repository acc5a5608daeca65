package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long Watch waits for a burst of writes to end.
const DefaultSettle = 100 * time.Millisecond

// Watch implements ports.Watchable. It reloads the catalog after files change
// and signals once per successful reload. Failed reloads are logged and the
// previous items stay active. The channel closes when ctx is done.
func (f *File) Watch(ctx context.Context) (<-chan struct{}, error) {
	root, only, err := f.watchRoot()
	if err != nil {
		return nil, fmt.Errorf("catalog: watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("catalog: create watcher: %w", err)
	}

	dirs := []string{root}
	if only == "" {
		if dirs, err = collectDirs(root); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("catalog: enumerate directories: %w", err)
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("catalog: watch %s: %w", dir, err)
		}
	}

	relevant := func(name string) bool {
		if only != "" {
			return filepath.Base(name) == only
		}
		rel, err := filepath.Rel(root, name)
		if err != nil {
			return false
		}
		ok, _ := doublestar.Match(Pattern, filepath.ToSlash(rel))
		return ok
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		defer watcher.Close()

		settle := time.NewTimer(time.Hour)
		settle.Stop()
		defer settle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("catalog watcher error", "err", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create != 0 && only == "" {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						_ = watcher.Add(evt.Name)
					}
				}
				if relevant(evt.Name) {
					settle.Reset(DefaultSettle)
				}
			case <-settle.C:
				if err := f.Reload(); err != nil {
					f.logger.Warn("catalog reload failed", "path", f.path, "err", err)
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
					// A signal is already pending.
				}
			}
		}
	}()

	return ch, nil
}
