package chunk_test

import (
	"strings"
	"testing"

	"github.com/kart-io/tedrag/internal/pkg/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmptyInput(t *testing.T) {
	p := chunk.Params{ChunkSizeTokens: 1024, OverlapRatio: 0.2}

	assert.Nil(t, chunk.Split("", p))
	assert.Nil(t, chunk.Split("   \n\t  ", p))
}

func TestSplitNormalizesWhitespace(t *testing.T) {
	p := chunk.Params{ChunkSizeTokens: 1024, OverlapRatio: 0}

	out := chunk.Split("  hello\n\nworld\t again  ", p)
	require.Len(t, out, 1)
	assert.Equal(t, "hello world again", out[0])
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 200)
	p := chunk.Params{ChunkSizeTokens: 256, OverlapRatio: 0.2}

	first := chunk.Split(text, p)
	second := chunk.Split(text, p)
	assert.Equal(t, first, second)
}

func TestSplitCoversInput(t *testing.T) {
	text := strings.Repeat("abcdefghij ", 500)
	p := chunk.Params{ChunkSizeTokens: 256, OverlapRatio: 0.2}

	out := chunk.Split(text, p)
	require.NotEmpty(t, out)

	// Window is 1024 chars, overlap 204, so each step advances 820 chars.
	// Reconstruct the normalized input from the non-overlapping prefixes.
	cleaned := strings.TrimSpace(text)
	var rebuilt strings.Builder
	for i, c := range out {
		if i == len(out)-1 {
			rebuilt.WriteString(c)
			break
		}
		rebuilt.WriteString(c[:820])
	}
	assert.Equal(t, strings.TrimSpace(cleaned), strings.TrimSpace(rebuilt.String()))

	for _, c := range out {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitClampsOverlap(t *testing.T) {
	text := strings.Repeat("x", 2000)

	// 0.9 is clamped to 0.3: window 400, overlap 120, step 280.
	out := chunk.Split(text, chunk.Params{ChunkSizeTokens: 100, OverlapRatio: 0.9})
	require.NotEmpty(t, out)
	assert.Len(t, out, 7)

	// A negative ratio is clamped to 0.
	noOverlap := chunk.Split(text, chunk.Params{ChunkSizeTokens: 100, OverlapRatio: -1})
	assert.Len(t, noOverlap, 5)
}

func TestSplitMinimumWindow(t *testing.T) {
	text := strings.Repeat("y", 450)

	// 10 tokens would be a 40-char window; the 200-char floor applies.
	out := chunk.Split(text, chunk.Params{ChunkSizeTokens: 10, OverlapRatio: 0})
	require.Len(t, out, 3)
	assert.Equal(t, 200, len(out[0]))
	assert.Equal(t, 200, len(out[1]))
	assert.Equal(t, 50, len(out[2]))
}

func TestSplitShortInputSingleChunk(t *testing.T) {
	out := chunk.Split("short transcript", chunk.Params{ChunkSizeTokens: 1024, OverlapRatio: 0.2})
	require.Len(t, out, 1)
	assert.Equal(t, "short transcript", out[0])
}
