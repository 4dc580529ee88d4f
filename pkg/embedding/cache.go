package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachingProvider wraps another EmbeddingProvider with a bounded in-memory
// cache. Query embeddings repeat heavily (follow-up retrievals, repeated
// questions), and embedding calls are the second-slowest hop in the pipeline
// after generation.
//
// Entries expire after an hour; when the entry cap is reached the cache is
// flushed whole rather than evicted piecemeal. Safe for concurrent use.
type CachingProvider struct {
	inner      EmbeddingProvider
	store      *cache.Cache
	maxEntries int
}

var _ EmbeddingProvider = &CachingProvider{}

func NewCachingProvider(inner EmbeddingProvider, maxEntries int) *CachingProvider {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &CachingProvider{
		inner:      inner,
		store:      cache.New(1*time.Hour, 10*time.Minute),
		maxEntries: maxEntries,
	}
}

func (p *CachingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text

	if cached, found := p.store.Get(key); found {
		return cached.(*EmbeddingResponse), nil
	}

	res, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	if p.store.ItemCount() >= p.maxEntries {
		p.store.Flush()
	}
	p.store.Set(key, res, cache.DefaultExpiration)

	return res, nil
}

// Len reports the current number of cached embeddings.
func (p *CachingProvider) Len() int {
	return p.store.ItemCount()
}
