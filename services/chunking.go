package services

import (
	"fmt"
	"strings"
	"unicode"

	"podcast-prep-platform/models"
)

// boundaryWindow is how far either side of the target cut we look for a sentence end.
const boundaryWindow = 20

// ChunkingService splits text into overlapping, sentence-aligned chunks.
// Sizes are measured in Unicode code points.
type ChunkingService struct {
	size    int
	overlap int
}

func NewChunkingService(size, overlap int) (*ChunkingService, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrConfiguration, size, overlap)
	}
	return &ChunkingService{size: size, overlap: overlap}, nil
}

func (cs *ChunkingService) Size() int    { return cs.size }
func (cs *ChunkingService) Overlap() int { return cs.overlap }

// SplitText returns the trimmed chunk texts in document order. Pieces that are empty
// after trimming are dropped.
func (cs *ChunkingService) SplitText(text string) []string {
	runes := []rune(text)
	n := len(runes)
	pieces := []string{}

	start := 0
	for start < n {
		end := start + cs.size
		if end < n {
			// The lower edge never drops below start+overlap, so start always advances.
			lo := max(end-boundaryWindow, start+cs.overlap)
			hi := min(end+boundaryWindow, n)
			if i := sentenceEnd(runes, lo, hi); i >= 0 {
				end = i + 1
			}
		}

		piece := strings.TrimSpace(string(runes[start:min(end, n)]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
		start = end - cs.overlap
	}
	return pieces
}

// sentenceEnd finds the first '.', '!' or '?' in runes[lo:hi] that ends the text or is
// followed by whitespace.
func sentenceEnd(runes []rune, lo, hi int) int {
	for i := lo; i < hi; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i == len(runes)-1 || unicode.IsSpace(runes[i+1]) {
				return i
			}
		}
	}
	return -1
}

// BuildChunks splits text and tags each chunk that quotes any topic excerpt.
func (cs *ChunkingService) BuildChunks(text string, topics []models.Topic) []models.Chunk {
	pieces := cs.SplitText(text)
	chunks := make([]models.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = models.Chunk{
			Index:     i,
			Text:      p,
			IsQuote:   containsExcerpt(p, topics),
			Timestamp: i,
		}
	}
	return chunks
}

func containsExcerpt(text string, topics []models.Topic) bool {
	for _, t := range topics {
		for _, ex := range t.Excerpts {
			if ex = strings.TrimSpace(ex); ex != "" && strings.Contains(text, ex) {
				return true
			}
		}
	}
	return false
}
