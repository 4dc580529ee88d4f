package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"assembly-rag-be/internal/dto"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "answer:"

// AnswerCache is the Redis-backed answer cache used when a Redis deployment
// is available, so cache hits survive restarts and are shared between
// instances. Methods swallow transport errors: a broken cache degrades to a
// miss, never to a failed query.
type AnswerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAnswerCache(rdb *redis.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *AnswerCache) Save(key string, response *dto.QueryResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	c.rdb.Set(context.Background(), keyPrefix+key, data, c.ttl)
}

func (c *AnswerCache) Get(key string) (*dto.QueryResponse, bool) {
	data, err := c.rdb.Get(context.Background(), keyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var response dto.QueryResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, false
	}
	return &response, true
}

func (c *AnswerCache) Flush() {
	ctx := context.Background()
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}

func (c *AnswerCache) Len() int {
	ctx := context.Background()
	count := 0
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}
