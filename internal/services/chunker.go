package services

import "strings"

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraphs are packed into chunks of at
// most maxChunkSize runes; consecutive chunks share an overlap tail so a fact
// split across a boundary is still embedded somewhere whole.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 || overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var chunks []string
	var current []rune

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, string(current))
		if overlap > 0 && len(current) > overlap {
			tail := append([]rune(nil), current[len(current)-overlap:]...)
			current = append(tail, '\n')
		} else {
			current = nil
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		runes := []rune(para)

		// A paragraph longer than a whole chunk gets cut into raw slices.
		for len(runes) > maxChunkSize {
			flush()
			chunks = append(chunks, string(runes[:maxChunkSize]))
			runes = runes[maxChunkSize-overlap:]
			current = nil
		}

		if len(current)+len(runes)+1 > maxChunkSize {
			flush()
		}
		if len(current) > 0 {
			current = append(current, '\n')
		}
		current = append(current, runes...)
	}

	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
