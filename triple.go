package adsmeta

import "fmt"

// Slot bits recorded in Triple.set.
const (
	fileSlot uint8 = 1 << iota
	streamSlot
	sizeSlot
)

// Triple is one matched helper output line projected into canonical order.
// A slot whose capture group did not participate in the match is unset,
// which is different from a group that matched the empty string.
type Triple struct {
	FileName   string
	StreamName string
	StreamSize string
	set        uint8
}

// HasFileName reports whether the file name group participated in the match.
func (t Triple) HasFileName() bool { return t.set&fileSlot != 0 }

// HasStream reports whether the stream name group participated in the match.
func (t Triple) HasStream() bool { return t.set&streamSlot != 0 }

// HasSize reports whether the stream size group participated in the match.
func (t Triple) HasSize() bool { return t.set&sizeSlot != 0 }

func (t Triple) String() string {
	return fmt.Sprintf("<%s, %s, %s>", slotString(t.FileName, t.HasFileName()),
		slotString(t.StreamName, t.HasStream()), slotString(t.StreamSize, t.HasSize()))
}

func slotString(s string, ok bool) string {
	if !ok {
		return "nil"
	}
	return fmt.Sprintf("%q", s)
}

// fileKey is the section key of a triple: its file name, or "" when unset.
func fileKey(t Triple) string {
	return t.FileName
}

// isMember reports whether a triple describes a stream.
func isMember(t Triple) bool {
	return t.HasStream() && t.StreamName != ""
}
