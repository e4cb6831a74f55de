package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/reoring/codecgen/internal/config"
)

// settle is how long the watcher waits after the last event before
// regenerating, so that editors writing a file in several steps trigger
// one run.
const settle = 100 * time.Millisecond

// watcher regenerates targets whenever their schema, or the config file
// listing them, changes. Failures are logged and watching continues.
type watcher struct {
	log        zerolog.Logger
	configPath string
	reload     func() ([]config.Target, error)
	generate   func(context.Context, []config.Target) error

	fw      *fsnotify.Watcher
	dirs    map[string]bool
	targets []config.Target
}

func (w *watcher) run(ctx context.Context, targets []config.Target) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	w.fw = fw
	w.dirs = map[string]bool{}

	if err := w.setTargets(targets); err != nil {
		return err
	}
	if w.configPath != "" {
		// Watch the directory; editors often replace files on save.
		if err := w.watchDir(w.configPath); err != nil {
			return err
		}
	}
	w.regenerate(ctx, w.targets)
	w.log.Info().Int("targets", len(w.targets)).Msg("watching for changes")

	var (
		fire          <-chan time.Time
		pending       = map[int]bool{}
		configChanged bool
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := abs(event.Name)
			if w.configPath != "" && name == abs(w.configPath) {
				configChanged = true
				fire = time.After(settle)
				continue
			}
			for i, t := range w.targets {
				if abs(t.Input) == name {
					pending[i] = true
					fire = time.After(settle)
				}
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("file watcher error")

		case <-fire:
			fire = nil
			if configChanged && w.reload != nil {
				configChanged = false
				clear(pending)
				targets, err := w.reload()
				if err != nil {
					w.log.Error().Err(err).Msg("config reload failed")
					continue
				}
				if err := w.setTargets(targets); err != nil {
					w.log.Error().Err(err).Msg("watch failed")
					continue
				}
				w.log.Info().Int("targets", len(targets)).Msg("config reloaded")
				w.regenerate(ctx, w.targets)
				continue
			}
			var batch []config.Target
			for i := range w.targets {
				if pending[i] {
					batch = append(batch, w.targets[i])
				}
			}
			clear(pending)
			w.regenerate(ctx, batch)
		}
	}
}

func (w *watcher) setTargets(targets []config.Target) error {
	w.targets = targets
	for _, t := range targets {
		if err := w.watchDir(t.Input); err != nil {
			return err
		}
	}
	return nil
}

func (w *watcher) watchDir(file string) error {
	dir := filepath.Dir(abs(file))
	if w.dirs[dir] {
		return nil
	}
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.dirs[dir] = true
	return nil
}

func (w *watcher) regenerate(ctx context.Context, targets []config.Target) {
	if len(targets) == 0 {
		return
	}
	if err := w.generate(ctx, targets); err != nil {
		w.log.Error().Err(err).Msg("generation failed")
	}
}

func abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}
	return filepath.Clean(path)
}
