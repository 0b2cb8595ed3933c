package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"podcast-prep-platform/internal/ai"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/utils"

	"github.com/redis/go-redis/v9"
)

const embeddingKeyPrefix = "embedding:"

// EmbeddingCache memoizes an ai.Embedder in Redis. Redis failures never fail an embedding call.
type EmbeddingCache struct {
	next  ai.Embedder
	rdb   *redis.Client
	model string
	ttl   time.Duration
}

func NewEmbeddingCache(next ai.Embedder, rdb *redis.Client, model string, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{next: next, rdb: rdb, model: model, ttl: ttl}
}

func (c *EmbeddingCache) key(text string) string {
	return embeddingKeyPrefix + utils.HashText(c.model, text)
}

func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(cached, &vec); jsonErr == nil && len(vec) > 0 {
			return vec, nil
		}
		logger.Warn("discarding corrupt cached embedding", "key", key)
	case !errors.Is(err, redis.Nil):
		// Fail open - embed directly if Redis is down
		logger.Warn("embedding cache read failed", "error", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return vec, nil
}
