package diffcache

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docdrift/docdrift/internal/spectest"
	"github.com/docdrift/docdrift/mdscan"
	"github.com/docdrift/docdrift/specdiff"
)

func TestKeyDeterminismAndSensitivity(t *testing.T) {
	base := spectest.SpecOf("1.0.0", spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"))))
	head := spectest.SpecOf("2.0.0", spectest.Func("add", spectest.Sig("number", spectest.Param("a", "string"))))

	k1 := Key(base, head, "")
	k2 := Key(base, head, "")
	require.Equal(t, k1, k2)
	require.Len(t, k1, 64)
	_, err := hex.DecodeString(k1)
	require.NoError(t, err)

	// Direction, spec content, and corpus digest all participate in the key.
	assert.NotEqual(t, k1, Key(head, base, ""))
	assert.NotEqual(t, k1, Key(base, base, ""))
	assert.NotEqual(t, k1, Key(base, head, "digest"))
}

func TestDocsDigest(t *testing.T) {
	a := mdscan.Document{Path: "a.md", Source: []byte("# A")}
	b := mdscan.Document{Path: "b.md", Source: []byte("# B")}

	assert.Equal(t, "", DocsDigest(nil))

	d1 := DocsDigest([]mdscan.Document{a, b})
	d2 := DocsDigest([]mdscan.Document{b, a})
	require.Equal(t, d1, d2)
	require.Len(t, d1, 64)

	changed := mdscan.Document{Path: "b.md", Source: []byte("# B changed")}
	assert.NotEqual(t, d1, DocsDigest([]mdscan.Document{a, changed}))
}

func TestEncodeDecodeEntry(t *testing.T) {
	base := spectest.SpecOf("1.0.0",
		spectest.Func("add", spectest.Sig("number", spectest.Param("a", "number"))),
		spectest.Class("Client", spectest.Method("connect", spectest.Sig(""))),
	)
	head := spectest.SpecOf("2.0.0",
		spectest.Func("add", spectest.Sig("number", spectest.Param("a", "string"))),
		spectest.Class("Client", spectest.Method("connectAsync", spectest.Sig(""))),
	)
	d := specdiff.Diff(base, head, specdiff.Options{})

	entry, err := encodeEntry(d)
	require.NoError(t, err)

	decoded, err := decodeEntry(entry)
	require.NoError(t, err)
	require.Equal(t, d, decoded)

	// A flipped payload byte fails digest verification.
	bad := append([]byte(nil), entry...)
	bad[len(bad)-1] ^= 0xFF
	_, err = decodeEntry(bad)
	require.Error(t, err)

	_, err = decodeEntry(entry[:10])
	require.Error(t, err)
}

// countingCache wraps a Cache to observe traffic.
type countingCache struct {
	inner Cache
	gets  int
	puts  int
}

func (c *countingCache) Get(key string) ([]byte, bool, error) {
	c.gets++
	return c.inner.Get(key)
}

func (c *countingCache) Put(key string, val []byte) error {
	c.puts++
	return c.inner.Put(key, val)
}

// failingCache errors on every operation.
type failingCache struct{}

func (failingCache) Get(string) ([]byte, bool, error) { return nil, false, errors.New("down") }
func (failingCache) Put(string, []byte) error         { return errors.New("down") }

func TestDiffWithCacheHitsOnSecondCall(t *testing.T) {
	base := spectest.SpecOf("1.0.0", spectest.Func("op", spectest.Sig("", spectest.Param("a", "string"))))
	head := spectest.SpecOf("2.0.0", spectest.Func("op", spectest.Sig("", spectest.Param("a", "number"))))
	cache := &countingCache{inner: NewMemoryCache()}

	first := DiffWithCache(cache, base, head, specdiff.Options{})
	require.Equal(t, 1, cache.gets)
	require.Equal(t, 1, cache.puts)
	require.Equal(t, []string{"op"}, first.Breaking)

	second := DiffWithCache(cache, base, head, specdiff.Options{})
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.puts, "a hit must not rewrite the entry")
	assert.Equal(t, first, second)
}

func TestDiffWithCacheRecoversFromCorruptEntry(t *testing.T) {
	base := spectest.SpecOf("1.0.0", spectest.Func("op", spectest.Sig("")))
	head := spectest.SpecOf("1.1.0", spectest.Func("op", spectest.Sig("")), spectest.Func("extra", spectest.Sig("")))
	cache := NewMemoryCache()
	key := Key(base, head, "")
	require.NoError(t, cache.Put(key, []byte("garbage")))

	d := DiffWithCache(cache, base, head, specdiff.Options{})
	require.Equal(t, []string{"extra"}, d.NonBreaking)

	// The corrupt entry was overwritten with a decodable one.
	val, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	recovered, err := decodeEntry(val)
	require.NoError(t, err)
	assert.Equal(t, d, recovered)
}

func TestDiffWithCacheToleratesFailingStore(t *testing.T) {
	base := spectest.SpecOf("1.0.0", spectest.Func("op", spectest.Sig("")))
	head := spectest.SpecOf("2.0.0")

	d := DiffWithCache(failingCache{}, base, head, specdiff.Options{})
	require.Equal(t, []string{"op"}, d.Breaking)
}

func TestDiffWithCacheNilCache(t *testing.T) {
	spec := spectest.SpecOf("1.0.0", spectest.Func("op", spectest.Sig("")))
	d := DiffWithCache(nil, spec, spec, specdiff.Options{})
	require.NotNil(t, d)
	assert.Empty(t, d.Breaking)
}

func TestDiffWithCacheKeyIncludesDocs(t *testing.T) {
	base := spectest.SpecOf("1.0.0", spectest.Func("op", spectest.Sig("")))
	head := spectest.SpecOf("2.0.0")
	docs := []mdscan.Document{{Path: "README.md", Source: []byte("```js\nimport { op } from \"sdk\";\n```\n")}}
	cache := &countingCache{inner: NewMemoryCache()}

	plain := DiffWithCache(cache, base, head, specdiff.Options{})
	withDocs := DiffWithCache(cache, base, head, specdiff.Options{Docs: docs})

	// Distinct keys, so both were computed and stored.
	assert.Equal(t, 2, cache.puts)
	assert.Nil(t, plain.DocsImpact)
	require.NotNil(t, withDocs.DocsImpact)
	require.Len(t, withDocs.DocsImpact.ImpactedFiles, 1)
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	cache := NewMemoryCache()

	_, ok, err := cache.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	stored := []byte("value")
	require.NoError(t, cache.Put("k", stored))
	stored[0] = 'X'

	val, ok, err := cache.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("value"), val)

	val[0] = 'Y'
	again, _, _ := cache.Get("k")
	require.Equal(t, []byte("value"), again)
}
