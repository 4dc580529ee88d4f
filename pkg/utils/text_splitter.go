package utils

import "unicode"

// SplitText splits a long string into chunks of at most chunkSize runes,
// keeping overlap runes of trailing context between neighbours. Chunks
// prefer to end on whitespace so words survive the cut; the boundary is
// only searched within the last tenth of the chunk, otherwise the hard
// limit applies.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if chunkSize <= 0 || len(runes) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := end
		for i := end; i > end-chunkSize/10 && i > start; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}
