package adsmeta

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// dirWatcher follows the cached directory and records whether anything in
// it changed since the last check.
type dirWatcher struct {
	w      *fsnotify.Watcher
	logger *slog.Logger
	dir    string
	stale  atomic.Bool
	wg     sync.WaitGroup
}

func newDirWatcher(logger *slog.Logger) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dw := &dirWatcher{w: w, logger: logger}
	dw.wg.Add(1)
	go dw.loop()
	return dw, nil
}

func (dw *dirWatcher) loop() {
	defer dw.wg.Done()
	for {
		select {
		case ev, ok := <-dw.w.Events:
			if !ok {
				return
			}
			// Reads and stat calls by the helper itself only produce Chmod on some platforms.
			if ev.Op == fsnotify.Chmod {
				continue
			}
			dw.logger.Debug("directory changed", "event", ev.String())
			dw.stale.Store(true)
		case err, ok := <-dw.w.Errors:
			if !ok {
				return
			}
			dw.logger.Warn("directory watcher error", "error", err)
			dw.stale.Store(true)
		}
	}
}

// follow switches the watch to dir. Failing to watch is logged, not fatal:
// the cache then simply lives until the next directory change.
func (dw *dirWatcher) follow(dir string) {
	if dir == dw.dir {
		dw.stale.Store(false)
		return
	}
	if dw.dir != "" {
		_ = dw.w.Remove(dw.dir)
	}
	dw.dir = ""
	if err := dw.w.Add(dir); err != nil {
		dw.logger.Warn("cannot watch directory", "dir", dir, "error", err)
	} else {
		dw.dir = dir
	}
	dw.stale.Store(false)
}

// takeStale reports whether the directory changed and resets the flag.
func (dw *dirWatcher) takeStale() bool {
	return dw.stale.Swap(false)
}

func (dw *dirWatcher) Close() error {
	err := dw.w.Close()
	dw.wg.Wait()
	return err
}
