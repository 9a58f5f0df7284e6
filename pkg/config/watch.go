package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc receives the outcome of every reload triggered by Watch
type ReloadFunc func(cfg *AdminConfig, err error)

// Watch reloads the global configuration whenever the config file at path is
// written or recreated. It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Reload()
			if onReload != nil {
				onReload(cfg, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(nil, fmt.Errorf("watch %s: %w", path, err))
			}
		}
	}
}
