package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to cfile on the returned channel until stop is
// closed. The containing directory is watched so editors that replace
// the file on save are noticed as well. Notifications are coalesced;
// the channel never blocks the watcher. An empty cfile watches nothing
// and returns a nil channel.
func Watch(cfile string, stop <-chan struct{}) (<-chan struct{}, error) {
	if cfile == "" {
		return nil, nil
	}

	target, err := filepath.Abs(cfile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config file %s: %w", cfile, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	changed := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name, err := filepath.Abs(ev.Name)
				if err != nil || name != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				slog.Info("Config file changed", "file", cfile, "op", ev.Op.String())
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("Config watcher error", "error", err)
			}
		}
	}()
	return changed, nil
}
