package context

import (
	"assembly-rag-be/pkg/rag"

	"github.com/google/uuid"
)

// Assemble merges ranked passages into a budget-bounded context.
//
// Passages are deduplicated by id first (first occurrence wins, so the
// higher-ranked copy survives), then walked in ranked order: a passage is
// kept only if its estimated token count still fits the remaining budget.
// Overflowing passages are dropped whole rather than truncated mid-passage,
// which keeps every included passage quotable as-is. Later, smaller passages
// may still fit after a drop.
//
// Deterministic and idempotent for identical input order.
func Assemble(passages []rag.Passage, budget int) rag.Context {
	ctx := rag.Context{}
	if budget <= 0 {
		return ctx
	}

	seen := make(map[uuid.UUID]bool, len(passages))

	for _, p := range passages {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true

		cost := rag.EstimateTokens(p.Content)
		if ctx.TokenEstimate+cost > budget {
			continue
		}

		ctx.Passages = append(ctx.Passages, p)
		ctx.TokenEstimate += cost
	}

	return ctx
}

// Merge appends fresh passages onto accumulated ones, deduplicating by id and
// keeping the accumulated order stable. Used by the agent loop when a
// follow-up retrieval lands.
func Merge(accumulated, fresh []rag.Passage) []rag.Passage {
	seen := make(map[uuid.UUID]bool, len(accumulated)+len(fresh))
	merged := make([]rag.Passage, 0, len(accumulated)+len(fresh))

	for _, p := range accumulated {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		merged = append(merged, p)
	}
	for _, p := range fresh {
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		merged = append(merged, p)
	}

	return merged
}
