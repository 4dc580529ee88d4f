package strategy

import "strings"

// Strategy routes a query across the internal minutes corpus and the web
// search collaborator.
type Strategy string

const (
	// InternalOnly: assembly-specific questions; the corpus is authoritative.
	InternalOnly Strategy = "internal_only"
	// ExternalPriority: recency-sensitive questions the corpus lags behind on.
	ExternalPriority Strategy = "external_priority"
	// HybridBalanced: general-knowledge questions; interleave both sources.
	HybridBalanced Strategy = "hybrid_balanced"
	// HybridInternalPriority: default; prefer the corpus, fill with web.
	HybridInternalPriority Strategy = "hybrid_internal_priority"
)

// UsesWeb reports whether the strategy consults the web searcher at all.
func (s Strategy) UsesWeb() bool {
	return s != InternalOnly
}

// Keyword families scored by Analyze. Korean forms first (the corpus is
// Korean parliamentary minutes), common English forms alongside for mixed
// queries.
var (
	assemblyKeywords = []string{
		"국회", "의원", "법안", "법률", "예산", "정책", "위원회", "본회의",
		"국정감사", "청문회", "발언", "회의록", "의사일정", "대정부질문",
		"assembly", "parliament", "minutes", "bill", "committee", "plenary",
	}
	recencyKeywords = []string{
		"최근", "현재", "지금", "오늘", "이번", "최신", "요즘", "어제",
		"recent", "current", "today", "latest", "now",
	}
	generalKeywords = []string{
		"무엇", "뭐야", "방법", "역사", "정의", "개념", "원리", "설명",
		"what is", "how to", "history", "definition", "explain",
	}
)

// Analyze scores the query against the keyword families and picks a search
// strategy. Deterministic; safe to call once for the response field and again
// per retrieval round.
func Analyze(query string) Strategy {
	lower := strings.ToLower(query)

	assemblyScore := scoreKeywords(lower, assemblyKeywords)
	recencyScore := scoreKeywords(lower, recencyKeywords)
	generalScore := scoreKeywords(lower, generalKeywords)

	switch {
	case assemblyScore >= 2:
		return InternalOnly
	case recencyScore >= 1:
		return ExternalPriority
	case generalScore >= 1:
		return HybridBalanced
	default:
		return HybridInternalPriority
	}
}

func scoreKeywords(query string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			score++
		}
	}
	return score
}
