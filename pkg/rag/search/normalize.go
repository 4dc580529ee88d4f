package search

import "strings"

// corrections maps speech-to-text artifacts seen in voice queries onto the
// terms the corpus actually uses. The client is voice-first, so homophone
// slips around assembly vocabulary are common.
var corrections = map[string]string{
	"국개":   "국회",
	"구괴":   "국회",
	"법앙":   "법안",
	"예샨":   "예산",
	"예싼":   "예산",
	"이원":   "의원",
	"회이록":  "회의록",
	"본회이":  "본회의",
	"국정감싸": "국정감사",
}

// NormalizeQuery rewrites known mis-transcriptions and collapses repeated
// whitespace. Deterministic, so cached embeddings stay valid for the
// normalized form.
func NormalizeQuery(query string) string {
	normalized := query
	for wrong, right := range corrections {
		normalized = strings.ReplaceAll(normalized, wrong, right)
	}
	return strings.Join(strings.Fields(normalized), " ")
}
