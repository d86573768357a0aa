package adsmeta

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Files smaller than this are hashed without asking the host to delay.
const slowDigestSize = 50 * 1024

// A cached digest is stored as "<hex digest>@<unix millis when computed>".
var cachedDigestPattern = regexp.MustCompile(`^([0-9a-fA-F]+)@([0-9]+)$`)

// CachedDigest returns the digest stored in the file's alg stream, provided
// it was computed no earlier than the file's last modification. Missing,
// malformed and outdated values are a miss; the latter two are logged.
func (ins *Inspector) CachedDigest(name string, alg Algorithm) (string, bool, error) {
	if !alg.valid() {
		return "", false, invalidAlgorithm(alg)
	}
	info, err := ins.fs.Stat(name)
	if err != nil {
		return "", false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", false, nil
	}

	contents, ok, err := ins.StreamContents(name, alg.String())
	if err != nil || !ok {
		return "", false, err
	}
	contents = strings.TrimSpace(contents)

	m := cachedDigestPattern.FindStringSubmatch(contents)
	if m == nil || len(m[1]) != alg.HexLen() {
		ins.logger.Warn("invalid cached digest", "file", name, "stream", alg.String(),
			"contents", contents, "pattern", cachedDigestPattern.String())
		return "", false, nil
	}
	computed, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		ins.logger.Warn("invalid cached digest timestamp", "file", name, "stream", alg.String(),
			"contents", contents, "error", err)
		return "", false, nil
	}

	modified := info.ModTime().UnixMilli()
	if modified > computed {
		ins.logger.Warn("outdated cached digest", "file", name, "stream", alg.String(),
			"contents", contents, "outdatedByMs", modified-computed)
		return "", false, nil
	}
	return strings.ToLower(m[1]), true, nil
}

// Digest returns the hex digest of the named file's contents. A valid cached
// value is used when present; otherwise the digest is computed and cached in
// the file's alg stream, keeping the file's modification time. Directories
// have no digest and yield "".
func (ins *Inspector) Digest(name string, alg Algorithm) (string, error) {
	if !alg.valid() {
		return "", invalidAlgorithm(alg)
	}
	info, err := ins.fs.Stat(name)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", nil
	}

	if sum, ok, err := ins.CachedDigest(name, alg); err != nil || ok {
		return sum, err
	}

	f, err := ins.fs.Open(name)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", name, err)
	}
	h := alg.New()
	err = hashFile(f, h)
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", name, err)
	}
	sum := hex.EncodeToString(h.Sum(nil))

	// Caching is best effort; the digest itself is already known.
	if err := ins.storeDigest(name, alg, sum, info.ModTime()); err != nil {
		ins.logger.Warn("cannot cache digest", "file", name, "stream", alg.String(), "error", err)
	}
	return sum, nil
}

// StoreDigest writes sum into the file's alg stream, stamped with the current time.
func (ins *Inspector) StoreDigest(name string, alg Algorithm, sum string) error {
	if !alg.valid() {
		return invalidAlgorithm(alg)
	}
	if len(sum) != alg.HexLen() {
		return fmt.Errorf("%s digest must have %d hex digits, got %d", alg, alg.HexLen(), len(sum))
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return fmt.Errorf("invalid %s digest %q: %w", alg, sum, err)
	}
	info, err := ins.fs.Stat(name)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot store a digest on directory %s", name)
	}
	return ins.storeDigest(name, alg, strings.ToLower(sum), info.ModTime())
}

func (ins *Inspector) storeDigest(name string, alg Algorithm, sum string, modTime time.Time) error {
	value := fmt.Sprintf("%s@%d", sum, ins.now().UnixMilli())
	if err := ins.store.WriteStream(name, alg.String(), []byte(value)); err != nil {
		return err
	}
	// Writing a stream may touch the file; put its modification time back.
	if err := ins.fs.Chtimes(name, ins.now(), modTime); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to restore modification time of %s: %w", name, err)
	}
	// The file now has one more stream than the cache knows about.
	if _, dir, err := canonicalize(name); err == nil {
		ins.forget(dir)
	}
	return nil
}

// DigestPending reports whether computing the digest of the named file is
// slow enough for the host to defer it: the file is a regular file of at
// least 50 KiB without a valid cached digest.
func (ins *Inspector) DigestPending(name string, alg Algorithm) (bool, error) {
	if !alg.valid() {
		return false, invalidAlgorithm(alg)
	}
	info, err := ins.fs.Stat(name)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if info.IsDir() || info.Size() < slowDigestSize {
		return false, nil
	}
	_, ok, err := ins.CachedDigest(name, alg)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func invalidAlgorithm(alg Algorithm) error {
	return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
}
