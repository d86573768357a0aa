package adsmeta

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
)

// NowFunc defines a function that returns the current time.
type NowFunc func() time.Time

// Option defines a function that configures an Inspector.
type Option func(*Inspector)

// Inspector answers stream queries for files by running one helper tool.
// It caches the results of one directory at a time.
//
// An Inspector is not safe for concurrent use. Queries are expected to come
// from a single host thread, one file after another.
type Inspector struct {
	helper   *Helper
	launcher Launcher
	encoding encoding.Encoding
	logger   *slog.Logger
	fs       afero.Fs
	store    StreamStore
	nowFunc  NowFunc
	watch    bool
	watcher  *dirWatcher
	cache    *dirCache
	stats    Stats
}

// New creates an Inspector. Without options it runs lads.exe from PATH,
// logs to slog.Default and uses the OS filesystem.
func New(options ...Option) (*Inspector, error) {
	ins := &Inspector{
		fs:      afero.NewOsFs(),
		nowFunc: time.Now,
		cache:   newDirCache(),
	}

	// Apply options
	for _, option := range options {
		option(ins)
	}

	if ins.logger == nil {
		ins.logger = slog.Default()
	}
	if ins.helper == nil {
		h, err := NewHelper(LADS, "")
		if err != nil {
			return nil, err
		}
		ins.helper = h
	}
	if ins.launcher == nil {
		ins.launcher = execLauncher{logger: ins.logger}
	}
	if ins.store == nil {
		ins.store = NewFsStreamStore(ins.fs)
	}
	if ins.watch && ins.helper.Granularity == PerDirectory {
		w, err := newDirWatcher(ins.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create directory watcher: %w", err)
		}
		ins.watcher = w
	}

	ins.logger.Debug("inspector created", "helper", ins.helper.String())
	return ins, nil
}

// Helper returns the helper the Inspector runs.
func (ins *Inspector) Helper() *Helper {
	return ins.helper
}

// Close stops the directory watcher, if any.
func (ins *Inspector) Close() error {
	if ins.watcher == nil {
		return nil
	}
	return ins.watcher.Close()
}

// now returns the current time.
func (ins *Inspector) now() time.Time {
	return ins.nowFunc()
}
