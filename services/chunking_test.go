package services

import (
	"strings"
	"testing"

	"podcast-prep-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunker(t *testing.T, size, overlap int) *ChunkingService {
	t.Helper()
	cs, err := NewChunkingService(size, overlap)
	require.NoError(t, err)
	return cs
}

func TestNewChunkingServiceRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 11},
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 10, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunkingService(tc.size, tc.overlap)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestSplitTextSentenceBoundaries(t *testing.T) {
	cs := newChunker(t, 15, 3)
	chunks := cs.SplitText("Sentence one. Sentence two! Sentence three?")

	assert.Equal(t, []string{
		"Sentence one.",
		"ne. Sentence two!",
		"wo! Sentence three?",
		"ee?",
	}, chunks)
	for _, c := range chunks {
		last := c[len(c)-1]
		assert.Contains(t, ".!?", string(last), "chunk %q should end on a sentence terminator", c)
	}
}

func TestSplitTextEmpty(t *testing.T) {
	cs := newChunker(t, 300, 50)
	assert.Empty(t, cs.SplitText(""))
	assert.NotNil(t, cs.SplitText(""))
}

func TestSplitTextRawCutWithoutBoundary(t *testing.T) {
	cs := newChunker(t, 4, 1)
	assert.Equal(t, []string{"abcd", "defg", "ghij", "j"}, cs.SplitText("abcdefghij"))
}

func TestSplitTextCoverageAndCountBound(t *testing.T) {
	size, overlap := 37, 11
	cs := newChunker(t, size, overlap)
	text := strings.Repeat("abcdefghijklmnopqrstuvwxyz0123456789", 20)

	chunks := cs.SplitText(text)

	// no boundaries: every chunk after the first restates exactly `overlap` characters
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		require.GreaterOrEqual(t, len(c), overlap)
		rebuilt.WriteString(c[overlap:])
	}
	assert.Equal(t, text, rebuilt.String())

	bound := (len(text) + (size - overlap) - 1) / (size - overlap)
	assert.LessOrEqual(t, len(chunks), bound)
}

func TestSplitTextCountsCodePoints(t *testing.T) {
	cs := newChunker(t, 3, 0)
	assert.Equal(t, []string{"ééé", "éé"}, cs.SplitText("ééééé"))
}

func TestSplitTextDropsWhitespacePieces(t *testing.T) {
	cs := newChunker(t, 5, 0)
	assert.Equal(t, []string{"abcde", "fghij"}, cs.SplitText("abcde     fghij"))
}

func TestSplitTextAlwaysAdvancesWithLargeOverlap(t *testing.T) {
	cs := newChunker(t, 10, 9)
	text := strings.Repeat("a. ", 40)

	chunks := cs.SplitText(text)
	require.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), len(text))
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 10+boundaryWindow)
	}
}

func TestBuildChunksIndicesAndQuotes(t *testing.T) {
	cs := newChunker(t, 15, 3)
	topics := []models.Topic{
		{ID: "t1", Excerpts: []string{"Sentence two", "  "}},
	}

	chunks := cs.BuildChunks("Sentence one. Sentence two! Sentence three?", topics)
	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i, c.Timestamp)
	}
	assert.False(t, chunks[0].IsQuote)
	assert.True(t, chunks[1].IsQuote)
	assert.False(t, chunks[2].IsQuote)
	assert.False(t, chunks[3].IsQuote)
}
