package search

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/rag"
	"assembly-rag-be/pkg/rag/strategy"
	"assembly-rag-be/pkg/websearch"

	"github.com/google/uuid"
)

// VectorStore is the narrow capability the retriever needs from the minutes
// index. The gorm/pgvector repository satisfies it through an adapter;
// tests use deterministic fakes.
type VectorStore interface {
	Search(ctx context.Context, embedding []float32, k int) ([]rag.Passage, error)
}

// Config encapsulates retrieval parameters.
type Config struct {
	TopK                int
	ScoreThreshold      float64
	CandidateMultiplier int // over-fetch factor before the top-k cut
	MaxRetries          int
	RetryDelay          time.Duration
}

// DefaultConfig returns default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		TopK:                5,
		ScoreThreshold:      0.35,
		CandidateMultiplier: 2,
		MaxRetries:          2,
		RetryDelay:          200 * time.Millisecond,
	}
}

// Retriever embeds queries and returns ranked passages from the vector
// store, blended with web results according to the routing strategy.
// Read-only and idempotent for identical query+k against an unchanged store.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	store    VectorStore
	web      websearch.Searcher // nil when no web search is configured
	config   Config
	logger   *log.Logger
}

func NewRetriever(
	embedder embedding.EmbeddingProvider,
	store VectorStore,
	web websearch.Searcher,
	config Config,
	logger *log.Logger,
) *Retriever {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.CandidateMultiplier <= 1 {
		config.CandidateMultiplier = 2
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		web:      web,
		config:   config,
		logger:   logger,
	}
}

// Retrieve runs one retrieval round: normalize, route, fan out, merge, rank.
// The result is sorted descending by score with ascending id as tiebreak and
// holds at most k passages.
func (r *Retriever) Retrieve(ctx context.Context, query rag.Query, k int) ([]rag.Passage, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, fmt.Errorf("empty query text: %w", rag.ErrInvalidQuery)
	}
	if k <= 0 {
		k = r.config.TopK
	}

	text = NormalizeQuery(text)

	strat := strategy.Analyze(text)
	if r.web == nil {
		strat = strategy.InternalOnly
	}

	internal, web, err := r.fanOut(ctx, text, strat, k)
	if err != nil {
		return nil, err
	}

	merged := mergeByStrategy(strat, internal, web, k)

	// Strategy decides which passages survive; the contract fixes the order.
	Rank(merged)

	r.logger.Printf("[DEBUG] retrieve %q strategy=%s internal=%d web=%d kept=%d",
		truncate(text, 40), strat, len(internal), len(web), len(merged))

	return merged, nil
}

// fanOut runs the internal and web searches of one round concurrently. A web
// failure degrades to internal-only with a warning; only the vector store is
// authoritative for errors.
func (r *Retriever) fanOut(ctx context.Context, text string, strat strategy.Strategy, k int) (internal, web []rag.Passage, err error) {
	if !strat.UsesWeb() {
		internal, err = r.searchInternal(ctx, text, k)
		return internal, nil, err
	}

	webCount := k
	if strat == strategy.ExternalPriority {
		webCount = k/2 + 2
	}

	var wg sync.WaitGroup
	var internalErr, webErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		internal, internalErr = r.searchInternal(ctx, text, k)
	}()
	go func() {
		defer wg.Done()
		web, webErr = r.web.Search(ctx, text, webCount)
	}()
	wg.Wait()

	if internalErr != nil {
		return nil, nil, internalErr
	}
	if webErr != nil {
		r.logger.Printf("[WARN] web search failed, degrading to internal results: %v", webErr)
		web = nil
	}

	return internal, web, nil
}

// searchInternal embeds the query and searches the minutes index, retrying
// transient store failures before surfacing ErrStoreUnavailable.
func (r *Retriever) searchInternal(ctx context.Context, text string, k int) ([]rag.Passage, error) {
	embeddingRes, err := r.embedder.Generate(ctx, text, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %v: %w", err, rag.ErrStoreUnavailable)
	}

	candidates, err := r.searchWithRetry(ctx, embeddingRes.Embedding.Values, k*r.config.CandidateMultiplier)
	if err != nil {
		return nil, err
	}

	kept := r.filterAndDeduplicate(candidates)
	Rank(kept)
	if len(kept) > k {
		kept = kept[:k]
	}
	return kept, nil
}

func (r *Retriever) searchWithRetry(ctx context.Context, vector []float32, limit int) ([]rag.Passage, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		passages, err := r.store.Search(ctx, vector, limit)
		if err == nil {
			return passages, nil
		}
		lastErr = err
		r.logger.Printf("[WARN] vector search attempt %d/%d failed: %v", attempt+1, r.config.MaxRetries+1, err)
	}

	return nil, fmt.Errorf("vector search failed after %d attempts (last: %v): %w",
		r.config.MaxRetries+1, lastErr, rag.ErrStoreUnavailable)
}

func (r *Retriever) filterAndDeduplicate(candidates []rag.Passage) []rag.Passage {
	var kept []rag.Passage
	seen := make(map[uuid.UUID]bool, len(candidates))

	for i, p := range candidates {
		if p.Score < r.config.ScoreThreshold {
			r.logger.Printf("[DEBUG] candidate %d: score=%.4f [FILTERED]", i+1, p.Score)
			continue
		}
		if seen[p.Id] {
			continue
		}
		seen[p.Id] = true
		kept = append(kept, p)
	}

	return kept
}

// mergeByStrategy selects which passages survive the round. ExternalPriority
// seats web results first, HybridBalanced interleaves the two sources,
// HybridInternalPriority seats corpus results first; all cut to k.
func mergeByStrategy(strat strategy.Strategy, internal, web []rag.Passage, k int) []rag.Passage {
	switch strat {
	case strategy.ExternalPriority:
		return capMerge(k, web, internal)
	case strategy.HybridBalanced:
		return interleave(k, internal, web)
	case strategy.HybridInternalPriority:
		return capMerge(k, internal, web)
	default: // InternalOnly
		return capMerge(k, internal)
	}
}

func capMerge(k int, groups ...[]rag.Passage) []rag.Passage {
	merged := make([]rag.Passage, 0, k)
	seen := make(map[uuid.UUID]bool)

	for _, group := range groups {
		for _, p := range group {
			if len(merged) >= k {
				return merged
			}
			if seen[p.Id] {
				continue
			}
			seen[p.Id] = true
			merged = append(merged, p)
		}
	}
	return merged
}

func interleave(k int, a, b []rag.Passage) []rag.Passage {
	merged := make([]rag.Passage, 0, k)
	seen := make(map[uuid.UUID]bool)

	for i := 0; len(merged) < k && (i < len(a) || i < len(b)); i++ {
		if i < len(a) && !seen[a[i].Id] {
			seen[a[i].Id] = true
			merged = append(merged, a[i])
		}
		if len(merged) >= k {
			break
		}
		if i < len(b) && !seen[b[i].Id] {
			seen[b[i].Id] = true
			merged = append(merged, b[i])
		}
	}
	return merged
}

// Rank sorts passages descending by score, breaking ties ascending by id so
// equal-scored passages keep a deterministic order.
func Rank(passages []rag.Passage) {
	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].Score != passages[j].Score {
			return passages[i].Score > passages[j].Score
		}
		return bytes.Compare(passages[i].Id[:], passages[j].Id[:]) < 0
	})
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
