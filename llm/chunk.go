package llm

import (
	"strings"

	"github.com/shelfgrab/shelfgrab/cleaner"
)

// Chunk splits text into pieces whose estimated token count stays at or
// below tokenThreshold, with overlapRate (0..1) of each chunk's words
// repeated at the start of the next one so records straddling a boundary are
// seen whole at least once.
//
// Text at or below the threshold comes back as a single chunk. Splitting is
// word-based; a single word never splits.
func Chunk(text string, tokenThreshold int, overlapRate float64) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if tokenThreshold <= 0 || cleaner.EstimateTokens(text) <= tokenThreshold {
		return []string{text}
	}

	if overlapRate < 0 {
		overlapRate = 0
	}
	if overlapRate >= 1 {
		overlapRate = 0.5
	}

	words := strings.Fields(text)

	// Words-per-chunk derived from the whole text's token/word ratio, so
	// the estimate tracks the actual character density of this input.
	tokensPerWord := float64(cleaner.EstimateTokens(text)) / float64(len(words))
	wordsPerChunk := int(float64(tokenThreshold) / tokensPerWord)
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}

	overlap := int(float64(wordsPerChunk) * overlapRate)
	step := wordsPerChunk - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
