package adsmeta

import (
	"fmt"
	"iter"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
)

// dirCache holds the streams of every file in at most one directory.
// When no directory is cached, entries is empty.
type dirCache struct {
	dir     string
	valid   bool
	entries map[string][]Stream
}

func newDirCache() *dirCache {
	return &dirCache{entries: make(map[string][]Stream)}
}

// holds reports whether dir is the cached directory.
func (c *dirCache) holds(dir string) bool {
	return c.valid && c.dir == dir
}

// lookup returns a copy of the cached streams of file. A file without an
// entry has no streams.
func (c *dirCache) lookup(file string) []Stream {
	if s, ok := c.entries[file]; ok && s != nil {
		return slices.Clone(s)
	}
	return []Stream{}
}

func (c *dirCache) put(file string, streams []Stream) {
	c.entries[file] = streams
}

// reset drops every entry and makes dir the cached directory.
func (c *dirCache) reset(dir string) {
	clear(c.entries)
	c.dir = dir
	c.valid = true
}

// clear drops every entry and forgets the cached directory.
func (c *dirCache) clear() {
	clear(c.entries)
	c.dir = ""
	c.valid = false
}

// Streams returns the alternate data streams of the named file, in the
// order the helper reports them. A file without streams yields an empty,
// non-nil slice.
//
// For a per-directory helper, the first query in a directory runs the helper
// once over the whole directory and caches every file it reports; further
// queries in the same directory are served from the cache. A query in another
// directory discards the cache before rebuilding it. If the rebuild fails,
// the cache keeps whatever it collected for the new directory. In particular,
// when the helper cannot be started at all, the directory stays cached with
// no entries and every file in it reports no streams until Flush.
func (ins *Inspector) Streams(name string) ([]Stream, error) {
	file, dir, err := canonicalize(name)
	if err != nil {
		return nil, err
	}

	if ins.helper.Granularity == PerFile {
		return ins.streamsOf(file)
	}

	if ins.watcher != nil && ins.watcher.takeStale() {
		ins.logger.Debug("cached directory changed, dropping cache", "dir", ins.cache.dir)
		ins.cache.clear()
	}

	if ins.cache.holds(dir) {
		ins.stats.Hits++
		streams := ins.cache.lookup(file)
		ins.logger.Debug("from cache", "file", file, "streams", len(streams))
		return streams, nil
	}

	ins.stats.Misses++
	ins.logger.Debug("making new cache", "dir", dir, "cachedDir", ins.cache.dir)
	ins.cache.reset(dir)
	if ins.watcher != nil {
		ins.watcher.follow(dir)
	}

	if err := ins.rebuild(dir); err != nil {
		return nil, fmt.Errorf("failed to list streams in %s: %w", dir, err)
	}

	streams := ins.cache.lookup(file)
	ins.logger.Debug("from cache", "file", file, "streams", len(streams))
	return streams, nil
}

// rebuild runs the helper over dir and stores each file's streams as soon as
// its section is complete.
func (ins *Inspector) rebuild(dir string) error {
	ins.stats.Rebuilds++

	src, err := openLines(ins.launcher, ins.helper.Executable, dir, ins.encoding)
	if err != nil {
		return err
	}
	defer src.Close()

	for section, err := range GroupSections(ins.helper.Triples(src.All()), fileKey, isMember) {
		if err != nil {
			return err
		}
		streams, err := buildStreams(section)
		if err != nil {
			return err
		}
		key, _, err := canonicalize(section.Key)
		if err != nil {
			return err
		}
		ins.cache.put(key, streams)
	}
	return nil
}

// streamsOf runs a per-file helper on file and returns its first section.
func (ins *Inspector) streamsOf(file string) ([]Stream, error) {
	src, err := openLines(ins.launcher, ins.helper.Executable, file, ins.encoding)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	next, stop := iter.Pull2(GroupSections(ins.helper.Triples(src.All()), fileKey, isMember))
	defer stop()

	section, err, ok := next()
	if err != nil {
		return nil, fmt.Errorf("failed to list streams of %s: %w", file, err)
	}
	if !ok {
		return []Stream{}, nil
	}
	return buildStreams(section)
}

// Count returns the number of alternate data streams of the named file.
func (ins *Inspector) Count(name string) (int, error) {
	streams, err := ins.Streams(name)
	if err != nil {
		return 0, err
	}
	return len(streams), nil
}

// Summary returns a human-readable listing of the named file's streams,
// or "" when it has none.
func (ins *Inspector) Summary(name string) (string, error) {
	streams, err := ins.Streams(name)
	if err != nil {
		return "", err
	}
	return summarize(streams), nil
}

func summarize(streams []Stream) string {
	if len(streams) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(streams)))
	b.WriteString(" ADSs:")
	for _, s := range streams {
		b.WriteString(lineSeparator)
		b.WriteString(s.String())
	}
	b.WriteString(lineSeparator)
	return b.String()
}

// Flush forgets the cached directory, so the next query rebuilds.
func (ins *Inspector) Flush() {
	ins.cache.clear()
}

// forget drops the cache if it holds dir.
func (ins *Inspector) forget(dir string) {
	if ins.cache.holds(dir) {
		ins.cache.clear()
	}
}

var lineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// canonicalize returns the absolute, symlink-free path of name and of its
// parent directory. An existing file is resolved as a whole, which also
// normalizes letter case on Windows. name itself need not exist; then only
// its parent is resolved.
func canonicalize(name string) (file, dir string, err error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, filepath.Dir(resolved), nil
	}
	dir = filepath.Dir(abs)
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	return filepath.Join(dir, filepath.Base(abs)), dir, nil
}
