package cleaner

import "unicode/utf8"

// EstimateTokens provides a fast token count estimate without a tokenizer
// dependency.
//
// Heuristic: utf8 rune count / 3.
//
//   - English text averages ~4 chars/token, CJK text averages ~1.5 chars/token.
//   - Dividing by 3 is a reasonable middle ground for mixed-language content.
//   - The chunker uses this to decide when page text must be split, so a
//     slight over-estimate only means slightly smaller chunks.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	est := n / 3
	if est < 1 {
		return 1
	}
	return est
}
