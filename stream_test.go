package adsmeta

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStreams(t *testing.T) {
	s := Section{Key: `C:\f.txt`, Members: []Triple{member("Zone.Identifier", "26"), member("MD5", "0")}}

	got, err := buildStreams(s)
	require.NoError(t, err)
	assert.Equal(t, []Stream{
		{File: `C:\f.txt`, Name: "Zone.Identifier", Size: 26},
		{File: `C:\f.txt`, Name: "MD5", Size: 0},
	}, got)
}

func TestBuildStreamsEmptySection(t *testing.T) {
	got, err := buildStreams(Section{Key: "f"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildStreamsInvalidSize(t *testing.T) {
	for _, size := range []string{"", "abc", "-1", "99999999999999999999999"} {
		t.Run(size, func(t *testing.T) {
			_, err := buildStreams(Section{Key: "f", Members: []Triple{member("a", "1"), member("b", size)}})

			var sizeErr *SizeParseError
			require.ErrorAs(t, err, &sizeErr)
			assert.Equal(t, "f", sizeErr.File)
			assert.Equal(t, "b", sizeErr.Stream)
			assert.Equal(t, size, sizeErr.Text)
		})
	}
}

func TestBuildStreamsLargeSize(t *testing.T) {
	big := int64(1) << 40
	got, err := buildStreams(Section{Key: "f", Members: []Triple{member("a", strconv.FormatInt(big, 10))}})
	require.NoError(t, err)
	assert.Equal(t, big, got[0].Size)
}

func TestStreamString(t *testing.T) {
	assert.Equal(t, `C:\f.txt:Zone.Identifier (26 bytes)`, Stream{File: `C:\f.txt`, Name: "Zone.Identifier", Size: 26}.String())
}
