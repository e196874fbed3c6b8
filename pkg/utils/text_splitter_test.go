package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("tuyển sinh 2026", 100, 20)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tuyển sinh 2026", chunks[0])
}

func TestSplitTextOverlapsChunkBoundaries(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxy"
	chunks := SplitText(text, 10, 4)

	require.Equal(t, []string{"abcdefghij", "ghijklmnop", "mnopqrstuv", "stuvwxy"}, chunks)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.Equal(t, prev[len(prev)-4:], chunks[i][:4])
	}
}

func TestSplitTextOverlapAtLeastChunkSizeFallsBackToDisjointChunks(t *testing.T) {
	chunks := SplitText("abcdefghij", 4, 6)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
}

func TestSplitTextNeverCutsMultiByteRunes(t *testing.T) {
	chunks := SplitText(strings.Repeat("đ", 12), 5, 2)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, len([]rune(chunk)), 5)
	}
}
