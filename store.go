package adsmeta

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// StreamStore reads and writes the contents of named streams.
type StreamStore interface {
	// ReadStream returns the contents of stream on file.
	// A missing stream yields an error matching os.ErrNotExist.
	ReadStream(file, stream string) ([]byte, error)

	// WriteStream replaces the contents of stream on file, creating it if needed.
	WriteStream(file, stream string, data []byte) error
}

// FsStreamStore addresses stream s of file f as the path "f:s".
// On an NTFS volume under afero.OsFs that path is the named data stream
// itself; on other filesystems it is a sibling file.
type FsStreamStore struct {
	fs afero.Fs
}

// NewFsStreamStore returns a StreamStore backed by fs.
func NewFsStreamStore(fs afero.Fs) *FsStreamStore {
	return &FsStreamStore{fs: fs}
}

func streamPath(file, stream string) string {
	return file + ":" + stream
}

// ReadStream implements StreamStore.
func (s *FsStreamStore) ReadStream(file, stream string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, streamPath(file, stream))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s of %s: %w", stream, file, err)
	}
	return data, nil
}

// WriteStream implements StreamStore.
func (s *FsStreamStore) WriteStream(file, stream string, data []byte) error {
	if err := afero.WriteFile(s.fs, streamPath(file, stream), data, 0o644); err != nil {
		return fmt.Errorf("failed to write stream %s of %s: %w", stream, file, err)
	}
	return nil
}

// StreamContents returns the contents of the named stream of a file as text.
// The boolean is false when the stream does not exist.
func (ins *Inspector) StreamContents(name, stream string) (string, bool, error) {
	data, err := ins.store.ReadStream(name, stream)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
