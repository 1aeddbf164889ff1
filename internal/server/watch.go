package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const rebuildDebounce = 250 * time.Millisecond

// watch starts the fsnotify watcher and the debounced rebuild worker.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, s.cfg.Content.Dir); err != nil {
		_ = watcher.Close()
		return err
	}

	trigger := make(chan struct{}, 1)

	go s.rebuildWorker(ctx, trigger)
	go func() {
		defer func() { _ = watcher.Close() }()
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if shouldIgnoreEvent(event.Name) {
					continue
				}
				// New directories must be watched as they appear.
				if event.Op.Has(fsnotify.Create) {
					_ = addDirsRecursive(watcher, event.Name)
				}
				if timer == nil {
					timer = time.AfterFunc(rebuildDebounce, func() {
						select {
						case trigger <- struct{}{}:
						default:
						}
					})
				} else {
					timer.Reset(rebuildDebounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watch error", "error", err)
			}
		}
	}()
	return nil
}

func (s *Server) rebuildWorker(ctx context.Context, trigger <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			start := time.Now()
			if err := s.Rebuild(); err != nil {
				slog.Error("rebuild failed", "error", err)
				continue
			}
			slog.Info("site rebuilt", "duration", time.Since(start).Round(time.Millisecond))
		}
	}
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// shouldIgnoreEvent filters editor droppings and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, "~"):
		return true
	}
	return false
}
