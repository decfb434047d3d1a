// Package diffcache memoizes diff results keyed by the content of both specs and the markdown corpus. Snapshot pairs recur across CI runs; the diff is pure,
// so identical inputs always produce identical output and the result can be served from a store.
//
// The cache is an optimization layer only. Every failure mode (a store error, a corrupt or truncated entry, an encoding change) falls back to recomputing
// the diff, and corrupt entries are overwritten on the way out. An entry is a 32-byte blake3 digest of the compressed payload followed by a zstd frame of
// the diff JSON; the digest is re-verified on every read.
package diffcache

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"

	"github.com/docdrift/docdrift/apispec"
	"github.com/docdrift/docdrift/internal/advisory"
	"github.com/docdrift/docdrift/mdscan"
	"github.com/docdrift/docdrift/specdiff"
)

// Cache stores encoded diff entries by key. Implementations must be safe for concurrent use. A missing key is (nil, false, nil), not an error.
type Cache interface {
	Get(key string) (val []byte, ok bool, err error)
	Put(key string, val []byte) error
}

// keyVersion namespaces cache keys. Bump it when the entry encoding or the diff JSON schema changes, so stale entries miss instead of decoding into the
// wrong shape.
const keyVersion = "diffcache-1"

// Key derives the cache key for diffing base against head with the given docs corpus digest. Both specs are hashed in their canonical serialization; every
// block is length-prefixed so that no two input combinations collide on concatenation.
func Key(base, head *apispec.Spec, docsDigest string) string {
	h := blake3.New(32, nil)
	writeBlock(h, []byte(keyVersion))
	writeBlock(h, apispec.Canonical(base))
	writeBlock(h, apispec.Canonical(head))
	writeBlock(h, []byte(docsDigest))
	return hex.EncodeToString(h.Sum(nil))
}

// DocsDigest fingerprints a markdown corpus for keying. The digest is independent of document order. An empty corpus digests to the empty string.
func DocsDigest(docs []mdscan.Document) string {
	if len(docs) == 0 {
		return ""
	}
	sorted := make([]mdscan.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := blake3.New(32, nil)
	for _, doc := range sorted {
		writeBlock(h, []byte(doc.Path))
		writeBlock(h, doc.Source)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeBlock(h hash.Hash, b []byte) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(b)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write(b)
}

// DiffWithCache is specdiff.Diff behind a cache. A nil cache just computes. Store errors and corrupt entries are logged as advisories and never surface:
// the result is always the true diff of base against head, freshly computed when the cache cannot serve it, and a corrupt entry is overwritten with the
// recomputed one.
func DiffWithCache(cache Cache, base, head *apispec.Spec, opts specdiff.Options) *specdiff.SpecDiff {
	if cache == nil {
		return specdiff.Diff(base, head, opts)
	}
	key := Key(base, head, DocsDigest(opts.Docs))
	if val, ok, err := cache.Get(key); err != nil {
		advisory.Logf("diffcache: get %s: %v", key, err)
	} else if ok {
		d, derr := decodeEntry(val)
		if derr == nil {
			return d
		}
		advisory.Logf("diffcache: corrupt entry %s: %v; recomputing", key, derr)
	}

	d := specdiff.Diff(base, head, opts)
	entry, err := encodeEntry(d)
	if err != nil {
		advisory.Logf("diffcache: encode entry %s: %v", key, err)
		return d
	}
	if err := cache.Put(key, entry); err != nil {
		advisory.Logf("diffcache: put %s: %v", key, err)
	}
	return d
}

// digestSize is the length of the blake3 digest prefixed to every entry.
const digestSize = 32

func encodeEntry(d *specdiff.SpecDiff) ([]byte, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("diffcache: marshal diff: %w", err)
	}

	var compressed bytes.Buffer
	enc, err := zstd.NewWriter(&compressed)
	if err != nil {
		return nil, fmt.Errorf("diffcache: create zstd encoder: %w", err)
	}
	if _, err := enc.Write(payload); err != nil {
		enc.Close()
		return nil, fmt.Errorf("diffcache: compress diff: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("diffcache: close zstd encoder: %w", err)
	}

	sum := blake3.Sum256(compressed.Bytes())
	return append(sum[:], compressed.Bytes()...), nil
}

func decodeEntry(val []byte) (*specdiff.SpecDiff, error) {
	if len(val) < digestSize {
		return nil, fmt.Errorf("diffcache: entry is %d bytes, want at least %d", len(val), digestSize)
	}
	frame := val[digestSize:]
	sum := blake3.Sum256(frame)
	if !bytes.Equal(sum[:], val[:digestSize]) {
		return nil, fmt.Errorf("diffcache: digest mismatch")
	}

	dec, err := zstd.NewReader(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("diffcache: create zstd decoder: %w", err)
	}
	defer dec.Close()
	payload, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("diffcache: decompress entry: %w", err)
	}

	var d specdiff.SpecDiff
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("diffcache: unmarshal diff: %w", err)
	}
	return &d, nil
}

// MemoryCache is an in-process Cache for tests and single-run tooling. Values are copied on both paths, so callers cannot mutate stored entries.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) Get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

func (c *MemoryCache) Put(key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), val...)
	return nil
}
