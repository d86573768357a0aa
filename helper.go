package adsmeta

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Kind identifies one of the supported inspection tools.
type Kind int

const (
	// Streams is Sysinternals streams.exe. It is run once per file.
	Streams Kind = iota
	// LADS is Heysoft lads.exe. It is run once per directory.
	LADS
)

// Granularity describes what path a helper is invoked on.
type Granularity int

const (
	// PerFile helpers are given the queried file.
	PerFile Granularity = iota
	// PerDirectory helpers are given the parent directory and report every file in it.
	PerDirectory
)

func (k Kind) String() string {
	switch k {
	case Streams:
		return "streams"
	case LADS:
		return "lads"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind returns the Kind named s (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "streams", "streams.exe":
		return Streams, nil
	case "lads", "lads.exe":
		return LADS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHelper, s)
}

// Output line formats. Both are matched against the whole line.
var (
	// "C:\dir\file.txt:" announces a file, "   :Zone.Identifier:$DATA<TAB>26" one of its streams.
	streamsPattern = regexp.MustCompile(`^(?:^\s+:([^:]*):\$DATA\t(\d+)|(([a-zA-Z]:\\)?([^:?*|<>/]+\\)*([^:?*|<>/\\]+)):$)$`)

	// "        26  C:\dir\file.txt:Zone.Identifier"
	ladsPattern = regexp.MustCompile(`^(?:^\s*(\d+)\s+(.+?)\\?:([^:]*)$)$`)
)

// Helper is the fixed description of one inspection tool: the executable to
// run, the line pattern and the 1-based capture groups holding the file name,
// stream name and stream size.
type Helper struct {
	Kind          Kind
	Executable    string
	Pattern       *regexp.Regexp
	FileNameIdx   int
	StreamNameIdx int
	StreamSizeIdx int
	Granularity   Granularity
}

// NewHelper returns the helper description for kind. An empty executable
// selects the tool's default name, resolved through PATH.
func NewHelper(kind Kind, executable string) (*Helper, error) {
	var h Helper
	switch kind {
	case Streams:
		h = Helper{
			Kind:          Streams,
			Executable:    "streams.exe",
			Pattern:       streamsPattern,
			FileNameIdx:   3,
			StreamNameIdx: 1,
			StreamSizeIdx: 2,
			Granularity:   PerFile,
		}
	case LADS:
		h = Helper{
			Kind:          LADS,
			Executable:    "lads.exe",
			Pattern:       ladsPattern,
			FileNameIdx:   2,
			StreamNameIdx: 3,
			StreamSizeIdx: 1,
			Granularity:   PerDirectory,
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownHelper, kind)
	}
	if executable != "" {
		h.Executable = executable
	}
	return &h, nil
}

// Match applies the helper's pattern to line and returns the matched groups
// in canonical order. Lines that do not match return false.
func (h *Helper) Match(line string) (Triple, bool) {
	loc := h.Pattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return Triple{}, false
	}

	var t Triple
	t.FileName, t.set = group(line, loc, h.FileNameIdx, t.set, fileSlot)
	t.StreamName, t.set = group(line, loc, h.StreamNameIdx, t.set, streamSlot)
	t.StreamSize, t.set = group(line, loc, h.StreamSizeIdx, t.set, sizeSlot)
	return t, true
}

// group extracts capture group idx, marking bit in set when it participated.
func group(line string, loc []int, idx int, set, bit uint8) (string, uint8) {
	if 2*idx+1 >= len(loc) || loc[2*idx] < 0 {
		return "", set
	}
	return line[loc[2*idx]:loc[2*idx+1]], set | bit
}

// Triples lifts Match over a line sequence, dropping lines that do not match.
func (h *Helper) Triples(lines iter.Seq2[string, error]) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		for line, err := range lines {
			if err != nil {
				yield(Triple{}, err)
				return
			}
			t, ok := h.Match(line)
			if !ok {
				continue
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

func (h *Helper) String() string {
	return fmt.Sprintf("%s(%s)", h.Kind, h.Executable)
}
