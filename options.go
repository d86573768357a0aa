package adsmeta

import (
	"log/slog"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
)

// WithHelper selects the inspection tool.
// The default is lads.exe, resolved through PATH.
//
// Example:
//
//	h, _ := adsmeta.NewHelper(adsmeta.Streams, `C:\tools\streams.exe`)
//	ins, err := adsmeta.New(adsmeta.WithHelper(h))
func WithHelper(h *Helper) Option {
	return func(ins *Inspector) {
		ins.helper = h
	}
}

// WithLauncher sets how helper processes are started.
// This is primarily useful for testing with canned helper output.
func WithLauncher(l Launcher) Option {
	return func(ins *Inspector) {
		ins.launcher = l
	}
}

// WithEncoding sets the character encoding of helper output, for example the
// console code page of a Windows host. The default is UTF-8.
func WithEncoding(enc encoding.Encoding) Option {
	return func(ins *Inspector) {
		ins.encoding = enc
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ins *Inspector) {
		ins.logger = logger
	}
}

// WithFs sets the filesystem used for digests and stream contents.
// This is primarily useful for testing with in-memory filesystems.
func WithFs(fs afero.Fs) Option {
	return func(ins *Inspector) {
		ins.fs = fs
	}
}

// WithStreamStore sets where stream contents are read from and written to.
// The default stores streams as "file:stream" paths on the Inspector's
// filesystem, which addresses the named stream on NTFS.
func WithStreamStore(store StreamStore) Option {
	return func(ins *Inspector) {
		ins.store = store
	}
}

// WithNowFunc sets a custom time function.
// This is primarily useful for testing with deterministic timestamps.
func WithNowFunc(nowFunc NowFunc) Option {
	return func(ins *Inspector) {
		ins.nowFunc = nowFunc
	}
}

// WithWatcher invalidates the cached directory as soon as anything in it
// changes. It has no effect for per-file helpers, which do not cache.
func WithWatcher() Option {
	return func(ins *Inspector) {
		ins.watch = true
	}
}
