package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch keeps open link documents in sync with external edits: it
// watches the parent directories of all local targets and re-mirrors a
// session's content shortly after its target file changes on disk.
//
// Targets come and go as sessions open new references, so the watch list
// is rescanned on a fixed interval in addition to reacting to events.
// Reload is debounced: editors typically emit a burst of writes per save.
func Watch(ctx context.Context, mgr *Manager, debounce time.Duration, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Info("watcher: started")

	watched := make(map[string]struct{})
	pending := make(map[string]struct{})

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func(target string) {
		pending[target] = struct{}{}
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	syncWatchList := func() {
		// A deleted directory loses its kernel watch without notice, so a
		// stale entry here would block re-adding the dir when it comes
		// back. Drop vanished dirs first, then the add loop below picks
		// recreated ones up again.
		for dir := range watched {
			if _, statErr := os.Stat(dir); statErr != nil {
				_ = w.Remove(dir)
				delete(watched, dir)
				logger.Debug("watcher: dropped vanished dir", slog.String("dir", dir))
			}
		}
		for dir := range dirsOf(mgr.LocalTargets()) {
			if _, ok := watched[dir]; ok {
				continue
			}
			if addErr := w.Add(dir); addErr != nil {
				logger.Warn("watcher: add dir failed",
					slog.String("dir", dir),
					slog.String("error", addErr.Error()))
				continue
			}
			watched[dir] = struct{}{}
			logger.Debug("watcher: watching dir", slog.String("dir", dir))
		}
	}

	syncWatchList()

	rescan := time.NewTicker(2 * time.Second)
	defer rescan.Stop()

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rescan.C:
			syncWatchList()

		case <-reloadCh:
			targets := mgr.LocalTargets()
			for t := range pending {
				for _, s := range targets[t] {
					s.ReloadTarget()
				}
				delete(pending, t)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if abs, absErr := filepath.Abs(ev.Name); absErr == nil {
					if _, ok := watched[abs]; ok {
						delete(watched, abs)
					}
				}
			}
			targets := mgr.LocalTargets()
			for t := range targets {
				if sameFile(t, ev.Name) {
					logger.Debug("watcher: target changed on disk",
						slog.String("target", t),
						slog.String("op", ev.Op.String()))
					scheduleReload(t)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// dirsOf returns the parent directories of all targets.
func dirsOf(targets map[string][]*Session) map[string]struct{} {
	out := make(map[string]struct{}, len(targets))
	for t := range targets {
		if abs, err := filepath.Abs(t); err == nil {
			out[filepath.Dir(abs)] = struct{}{}
		}
	}
	return out
}

// sameFile compares a target path with an event path, tolerating
// relative targets.
func sameFile(target, eventPath string) bool {
	at, err1 := filepath.Abs(target)
	ae, err2 := filepath.Abs(eventPath)
	if err1 != nil || err2 != nil {
		return target == eventPath
	}
	return at == ae
}
