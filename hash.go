package adsmeta

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"io"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Algorithm is a whole-file digest algorithm.
type Algorithm int

const (
	CRC32 Algorithm = iota
	Adler32
	MD5
	SHA1
	SHA256
	SHA384
	SHA512
	XXH64
)

var algorithms = [...]struct {
	name  string
	bits  int
	newFn func() hash.Hash
}{
	CRC32:   {"CRC32", 32, func() hash.Hash { return crc32.NewIEEE() }},
	Adler32: {"Adler32", 32, func() hash.Hash { return adler32.New() }},
	MD5:     {"MD5", 128, md5.New},
	SHA1:    {"SHA1", 160, sha1.New},
	SHA256:  {"SHA256", 256, sha256.New},
	SHA384:  {"SHA384", 384, sha512.New384},
	SHA512:  {"SHA512", 512, sha512.New},
	XXH64:   {"XXH64", 64, func() hash.Hash { return xxhash.New() }},
}

// Algorithms returns every supported algorithm.
func Algorithms() []Algorithm {
	all := make([]Algorithm, len(algorithms))
	for i := range algorithms {
		all[i] = Algorithm(i)
	}
	return all
}

// ParseAlgorithm returns the algorithm named s (case-insensitive).
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, a := range algorithms {
		if strings.EqualFold(a.name, s) {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) valid() bool {
	return a >= 0 && int(a) < len(algorithms)
}

// String returns the algorithm name, which is also the name of the stream
// its cached digest is kept in.
func (a Algorithm) String() string {
	if !a.valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithms[a].name
}

// BitLen returns the digest length in bits.
func (a Algorithm) BitLen() int {
	if !a.valid() {
		return 0
	}
	return algorithms[a].bits
}

// HexLen returns the length of the digest in hex digits.
func (a Algorithm) HexLen() int {
	return a.BitLen() / 4
}

// New returns a fresh hash.Hash for the algorithm.
func (a Algorithm) New() hash.Hash {
	if !a.valid() {
		panic(fmt.Sprintf("adsmeta: invalid algorithm %d", int(a)))
	}
	return algorithms[a].newFn()
}

// Default size for the buffer used when hashing files
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for file I/O during hashing
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// hashFile hashes the content from a reader using the provided hash function.
func hashFile(content io.Reader, h hash.Hash) error {
	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	// Hash the file content
	_, err := io.CopyBuffer(h, content, buffer)
	if err != nil {
		return fmt.Errorf("failed to copy content: %w", err)
	}
	return nil
}
