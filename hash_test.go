package adsmeta

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"testing"
	"testing/iotest"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// TestHashFile checks that hashing through the pooled buffer gives the same
// result as writing the content to the hash directly.
func TestHashFile(t *testing.T) {
	memFs := afero.NewMemMapFs()

	testCases := []struct {
		name    string
		content []byte
	}{
		{name: "Normal file", content: []byte("test content")},
		{name: "Empty file", content: []byte{}},
		{name: "Larger than buffer", content: bytes.Repeat([]byte("0123456789abcdef"), 5000)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := "/" + tc.name
			if err := afero.WriteFile(memFs, path, tc.content, 0o644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			file, err := memFs.Open(path)
			if err != nil {
				t.Fatalf("Failed to open file: %v", err)
			}
			defer file.Close()

			h1 := xxhash.New()
			if err := hashFile(file, h1); err != nil {
				t.Fatalf("hashFile() error = %v", err)
			}

			h2 := xxhash.New()
			h2.Write(tc.content)

			if !bytes.Equal(h1.Sum(nil), h2.Sum(nil)) {
				t.Errorf("hashFile() produced different hash than direct hashing")
			}
		})
	}
}

// TestHashFile_Fail checks that read errors are reported.
func TestHashFile_Fail(t *testing.T) {
	boom := errors.New("read failed")
	err := hashFile(iotest.ErrReader(boom), MD5.New())
	if !errors.Is(err, boom) {
		t.Errorf("hashFile() error = %v, want %v", err, boom)
	}
}

func TestAlgorithms(t *testing.T) {
	want := map[Algorithm]string{
		CRC32:   "352441c2",
		Adler32: "024d0127",
		MD5:     "900150983cd24fb0d6963f7d28e17f72",
		SHA1:    "a9993e364706816aba3e25717850c26c9cd0d89d",
		SHA256:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA384:  "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7",
		SHA512:  "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		XXH64:   fmt.Sprintf("%016x", xxhash.Sum64String("abc")),
	}

	if len(Algorithms()) != len(want) {
		t.Fatalf("Algorithms() = %v, want %d entries", Algorithms(), len(want))
	}

	for _, alg := range Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			h := alg.New()
			io.WriteString(h, "abc")
			got := hex.EncodeToString(h.Sum(nil))
			if got != want[alg] {
				t.Errorf("%s(abc) = %s, want %s", alg, got, want[alg])
			}
			if len(got) != alg.HexLen() {
				t.Errorf("%s digest has %d hex digits, HexLen() = %d", alg, len(got), alg.HexLen())
			}

			parsed, err := ParseAlgorithm(alg.String())
			if err != nil || parsed != alg {
				t.Errorf("ParseAlgorithm(%q) = %v, %v", alg.String(), parsed, err)
			}
		})
	}
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("sha256")
	if err != nil || alg != SHA256 {
		t.Errorf("ParseAlgorithm(sha256) = %v, %v", alg, err)
	}
	if _, err := ParseAlgorithm("MD2"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("ParseAlgorithm(MD2) error = %v, want ErrUnknownAlgorithm", err)
	}
	if got := Algorithm(42).String(); got != "Algorithm(42)" {
		t.Errorf("Algorithm(42).String() = %q", got)
	}
	if got := Algorithm(42).BitLen(); got != 0 {
		t.Errorf("Algorithm(42).BitLen() = %d", got)
	}
}

// TestBufferPoolReuse tests that pooled buffers keep their size
func TestBufferPoolReuse(t *testing.T) {
	bufPtr1 := bufferPool.Get().(*[]byte)
	buffer1 := *bufPtr1

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, bytes.NewReader([]byte("test content for buffer pool test")), buffer1); err != nil {
		t.Fatalf("Failed to copy: %v", err)
	}
	bufferPool.Put(bufPtr1)

	bufPtr2 := bufferPool.Get().(*[]byte)
	buffer2 := *bufPtr2
	defer bufferPool.Put(bufPtr2)

	if len(buffer2) != defaultBufferSize {
		t.Errorf("Buffer pool returned len=%d, want %d", len(buffer2), defaultBufferSize)
	}
	if cap(buffer1) != cap(buffer2) {
		t.Errorf("Buffer pool not reusing buffers: cap1=%d, cap2=%d", cap(buffer1), cap(buffer2))
	}
}
