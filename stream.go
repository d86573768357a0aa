package adsmeta

import (
	"errors"
	"fmt"
	"strconv"
)

// Stream describes one alternate data stream of a file.
type Stream struct {
	File string // file identity as reported by the helper
	Name string
	Size int64
}

// String renders the stream as "file:name (size bytes)".
func (s Stream) String() string {
	return fmt.Sprintf("%s:%s (%d bytes)", s.File, s.Name, s.Size)
}

var errNegativeSize = errors.New("negative size")

// buildStreams converts a section into stream records, in member order.
func buildStreams(s Section) ([]Stream, error) {
	streams := make([]Stream, 0, len(s.Members))
	for _, m := range s.Members {
		size, err := strconv.ParseInt(m.StreamSize, 10, 64)
		if err == nil && size < 0 {
			err = errNegativeSize
		}
		if err != nil {
			return nil, &SizeParseError{File: s.Key, Stream: m.StreamName, Text: m.StreamSize, Err: err}
		}
		streams = append(streams, Stream{File: s.Key, Name: m.StreamName, Size: size})
	}
	return streams, nil
}
