package embedcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kart-io/tedrag/pkg/embedcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	c, err := embedcache.Load(filepath.Join(t.TempDir(), "nope", "embeddings.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestPutAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "embeddings.jsonl")

	c, err := embedcache.Load(path)
	require.NoError(t, err)

	require.NoError(t, c.Put("k1", []float32{0.1, 0.2}))
	require.NoError(t, c.Put("k2", []float32{0.3}))

	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, v)

	// A second process loading the same log sees both entries.
	reloaded, err := embedcache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	v, ok = reloaded.Get("k2")
	require.True(t, ok)
	assert.Equal(t, []float32{0.3}, v)
}

func TestPutIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")

	c, err := embedcache.Load(path)
	require.NoError(t, err)

	require.NoError(t, c.Put("k", []float32{1}))
	require.NoError(t, c.Put("k", []float32{2}))

	// The second put must not overwrite the first record.
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []float32{1}, v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, len(splitLines(string(data))))
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.jsonl")
	content := `{"key":"good","embedding":[0.5]}
not json at all
{"key":"","embedding":[1]}
{"key":"noembedding"}

{"key":"good2","embedding":[0.25,0.75]}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := embedcache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("good")
	assert.True(t, ok)
	_, ok = c.Get("good2")
	assert.True(t, ok)
	_, ok = c.Get("noembedding")
	assert.False(t, ok)
}

func TestKeyComposition(t *testing.T) {
	k1 := embedcache.Key("42", 0, "some chunk text", 1024, 0.2)
	k2 := embedcache.Key("42", 0, "some chunk text", 1024, 0.2)
	assert.Equal(t, k1, k2)

	// Changing any chunking parameter produces a different key.
	assert.NotEqual(t, k1, embedcache.Key("42", 0, "some chunk text", 512, 0.2))
	assert.NotEqual(t, k1, embedcache.Key("42", 0, "some chunk text", 1024, 0.1))
	assert.NotEqual(t, k1, embedcache.Key("42", 1, "some chunk text", 1024, 0.2))
	assert.NotEqual(t, k1, embedcache.Key("43", 0, "some chunk text", 1024, 0.2))
	assert.NotEqual(t, k1, embedcache.Key("42", 0, "other chunk text", 1024, 0.2))
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
