package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, chunkText("", 1200, 200))
	assert.Nil(t, chunkText("   \n\t ", 1200, 200))
}

func TestChunkTextShortInputIsOneChunk(t *testing.T) {
	chunks := chunkText("a short page", 1200, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short page", chunks[0])
}

func TestChunkTextNormalizesWhitespace(t *testing.T) {
	chunks := chunkText("spaced\n\nout   text\tacross  lines", 1200, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "spaced out text across lines", chunks[0])
}

func TestChunkTextWindowsOverlap(t *testing.T) {
	text := "abcdefghijklmnopqrst" // 20 chars
	chunks := chunkText(text, 10, 3)

	require.Len(t, chunks, 3)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "hijklmnopq", chunks[1])
	assert.Equal(t, "opqrst", chunks[2])

	// Consecutive windows share the overlap region.
	assert.True(t, strings.HasPrefix(chunks[1], chunks[0][7:]))
}

func TestBuildChunksNumbersPagesAndIDs(t *testing.T) {
	pages := []string{"", "page two text", "page three text"}
	chunks := buildChunks("NG12 PDF", pages)

	require.Len(t, chunks, 2)
	assert.Equal(t, "c0000", chunks[0].ChunkID)
	assert.Equal(t, 2, chunks[0].Page)
	assert.Equal(t, "c0001", chunks[1].ChunkID)
	assert.Equal(t, 3, chunks[1].Page)
	assert.Equal(t, "NG12 PDF", chunks[0].Source)
}
