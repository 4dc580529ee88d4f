package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"assembly-rag-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// AnswerCache keeps finished query responses for a short window so repeated
// questions skip the whole agent loop. It is flushed whenever new minutes
// are indexed, since any cached answer may be stale from that point on.
type AnswerCache struct {
	cache *cache.Cache
}

func NewAnswerCache(ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		cache: cache.New(ttl, time.Minute),
	}
}

// Key derives a stable cache key from the query text and retrieval size.
// Case and surrounding whitespace do not change the answer, so they do not
// change the key either.
func Key(query string, k int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", normalized, k)))
	return hex.EncodeToString(sum[:16])
}

func (c *AnswerCache) Save(key string, response *dto.QueryResponse) {
	c.cache.Set(key, response, cache.DefaultExpiration)
}

func (c *AnswerCache) Get(key string) (*dto.QueryResponse, bool) {
	if x, found := c.cache.Get(key); found {
		return x.(*dto.QueryResponse), true
	}
	return nil, false
}

func (c *AnswerCache) Flush() {
	c.cache.Flush()
}

func (c *AnswerCache) Len() int {
	return c.cache.ItemCount()
}
