package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 20)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0])
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("a", 250)

	chunks := SplitText(text, 100, 0)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestSplitTextOverlapRepeatsBoundaryText(t *testing.T) {
	text := "abcdefghij" // 10 chars

	chunks := SplitText(text, 6, 2)

	require.Len(t, chunks, 2)
	assert.Equal(t, "abcdef", chunks[0])
	assert.Equal(t, "efghij", chunks[1])
	assert.Equal(t, chunks[0][4:], chunks[1][:2], "overlap region must match")
}

func TestSplitTextOverlapAtLeastChunkSizeStillAdvances(t *testing.T) {
	text := strings.Repeat("x", 30)

	chunks := SplitText(text, 10, 10)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Len(t, c, 10)
	}
}

func TestSplitTextHandlesMultibyteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 50)

	chunks := SplitText(text, 100, 10)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100, "chunk size is measured in runes, not bytes")
		assert.True(t, strings.HasPrefix(text, chunks[0]))
	}
}
