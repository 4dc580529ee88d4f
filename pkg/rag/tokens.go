package rag

// EstimateTokens approximates the token count of text with the common
// four-characters-per-token heuristic. Exact tokenizer counts differ per
// model; the assembler only needs a stable upper-bound estimate.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimatePassagesTokens sums the token estimate over a passage slice.
func EstimatePassagesTokens(passages []Passage) int {
	total := 0
	for _, p := range passages {
		total += EstimateTokens(p.Content)
	}
	return total
}
